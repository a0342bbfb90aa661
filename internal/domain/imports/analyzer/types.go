// Package analyzer reconciles detected CSV columns against the standard
// customer schema plus tenant-defined custom fields, infers column types
// from samples, and applies user mapping overrides.
package analyzer

// FieldType classifies a custom-field column from sampled values.
type FieldType string

const (
	FieldTypeText    FieldType = "text"
	FieldTypeNumber  FieldType = "number"
	FieldTypeDate    FieldType = "date"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeSelect  FieldType = "select"
)

// Mapping sentinels. A header maps to a standard field key, to
// CustomPrefix+header, or to Skip.
const (
	Skip         = "skip"
	CustomPrefix = "custom_"
)

// StandardFields is the closed set of target field keys a header may map to
// directly. Everything else becomes a custom field or is skipped.
var StandardFields = map[string]bool{
	"name":                  true,
	"phone":                 true,
	"email":                 true,
	"address1":              true,
	"address2":              true,
	"city":                  true,
	"state":                 true,
	"zip":                   true,
	"secondaryContactName":  true,
	"secondaryContactPhone": true,
	"customerType":          true,
	"accountNumber":         true,
	"createdDate":           true,
	"lastActivity":          true,
	"tags":                  true,
	"notes":                 true,
	"ownershipHistory":      true,
}

// CustomFieldProposal is a column that maps to no standard field and should
// be materialized as a tenant custom field on import.
type CustomFieldProposal struct {
	Name         string    `json:"name"`
	Type         FieldType `json:"type"`
	SampleValues []string  `json:"sample_values"`
}

// Analysis is the working artifact of one import session: the effective
// header mapping plus custom-field and skip decisions. It is never
// persisted.
type Analysis struct {
	DetectedFormat string                `json:"detected_format"`
	FieldMapping   map[string]string     `json:"field_mapping"`
	CustomFields   []CustomFieldProposal `json:"custom_fields"`
	SkippedFields  []string              `json:"skipped_fields"`
	Issues         []string              `json:"issues"`
}

// MappingFor returns the effective target for a header, defaulting to
// custom-field creation so no column is ever silently dropped.
func (a *Analysis) MappingFor(header string) string {
	if target, ok := a.FieldMapping[header]; ok {
		return target
	}
	return CustomPrefix + header
}
