package analyzer

import (
	"fmt"

	"github.com/hmartins/customer-directory/internal/domain/imports/parser"
	"github.com/hmartins/customer-directory/internal/domain/imports/sniffer"
)

// sampleRowLimit caps type inference at a prefix of the file. Accuracy on a
// prefix sample is traded for not reading a 100k-row file twice.
const sampleRowLimit = 10

// Analyze reconciles the document's headers against the detected format
// profile. Every header lands in exactly one bucket: standard mapping,
// custom-field proposal, or skip list. Skipped headers keep their sample
// values so a user override can still promote them to custom fields.
func Analyze(doc *parser.Document, profile *sniffer.FormatProfile) *Analysis {
	analysis := &Analysis{
		DetectedFormat: profile.Name,
		FieldMapping:   make(map[string]string, len(doc.Headers)),
	}

	seen := make(map[string]int, len(doc.Headers))
	for _, header := range doc.Headers {
		if header == "" {
			continue
		}

		// Row values are keyed by header name, so a repeated header keeps
		// only its last column's value.
		seen[header]++
		if seen[header] == 2 {
			analysis.Issues = append(analysis.Issues, fmt.Sprintf(
				"header %q appears more than once; only the last column is read", header))
		}
		if seen[header] > 1 {
			continue
		}

		if target, ok := profile.TargetField(header); ok {
			analysis.FieldMapping[header] = target
			continue
		}

		if profile.IsSkipped(header) {
			analysis.FieldMapping[header] = Skip
			analysis.SkippedFields = append(analysis.SkippedFields, header)
			continue
		}

		proposeCustomField(analysis, doc, header)
	}

	if len(doc.Rows) == 0 {
		analysis.Issues = append(analysis.Issues, "file contains no data rows")
	}

	return analysis
}

// proposeCustomField maps a header to custom_<header> and infers its type
// from the first populated sample rows.
func proposeCustomField(analysis *Analysis, doc *parser.Document, header string) {
	samples := doc.SampleRows(header, sampleRowLimit)
	analysis.FieldMapping[header] = CustomPrefix + header
	analysis.CustomFields = append(analysis.CustomFields, CustomFieldProposal{
		Name:         header,
		Type:         InferType(samples),
		SampleValues: samples,
	})
}
