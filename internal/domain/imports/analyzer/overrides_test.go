package analyzer

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmartins/customer-directory/internal/domain/imports/sniffer"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestApplyOverrides(t *testing.T) {
	registry := sniffer.NewRegistry()

	t.Run("standard field override wins over default", func(t *testing.T) {
		doc := mustParse(t, "Name,Extra\nAcme,something")
		defaults := Analyze(doc, registry.Detect(doc.Headers))
		require.Equal(t, CustomPrefix+"Extra", defaults.FieldMapping["Extra"])

		result := ApplyOverrides(doc, defaults, map[string]string{"Extra": "accountNumber"}, discardLogger())
		assert.Equal(t, "accountNumber", result.FieldMapping["Extra"])
		assert.Empty(t, result.CustomFields)
	})

	t.Run("skip override forces the skip list", func(t *testing.T) {
		doc := mustParse(t, "Name,Phone\nAcme,555")
		defaults := Analyze(doc, registry.Detect(doc.Headers))

		result := ApplyOverrides(doc, defaults, map[string]string{"Phone": "skip"}, discardLogger())
		assert.Equal(t, Skip, result.FieldMapping["Phone"])
		assert.Contains(t, result.SkippedFields, "Phone")
	})

	t.Run("custom override re-runs type inference", func(t *testing.T) {
		doc := mustParse(t, "Name,Code\nAcme,12\nBeta,34")
		defaults := Analyze(doc, registry.Detect(doc.Headers))

		result := ApplyOverrides(doc, defaults, map[string]string{"Code": "custom"}, discardLogger())
		assert.Equal(t, CustomPrefix+"Code", result.FieldMapping["Code"])
		require.Len(t, result.CustomFields, 1)
		assert.Equal(t, FieldTypeNumber, result.CustomFields[0].Type)
	})

	t.Run("ship is corrected to skip with a warning", func(t *testing.T) {
		doc := mustParse(t, "Name,Fax\nAcme,555")
		defaults := Analyze(doc, registry.Detect(doc.Headers))

		result := ApplyOverrides(doc, defaults, map[string]string{"Fax": "ship"}, discardLogger())
		assert.Equal(t, Skip, result.FieldMapping["Fax"])
		assert.Contains(t, result.SkippedFields, "Fax")

		found := false
		for _, issue := range result.Issues {
			if strings.Contains(issue, "ship") {
				found = true
			}
		}
		assert.True(t, found, "expected a corruption warning in issues")
	})

	t.Run("unrecognized override warns and falls back to default", func(t *testing.T) {
		doc := mustParse(t, "Name,Extra\nAcme,x")
		defaults := Analyze(doc, registry.Detect(doc.Headers))

		result := ApplyOverrides(doc, defaults, map[string]string{"Extra": "frobnicate"}, discardLogger())
		assert.Equal(t, CustomPrefix+"Extra", result.FieldMapping["Extra"])
		require.NotEmpty(t, result.Issues)
		assert.Contains(t, result.Issues[len(result.Issues)-1], "frobnicate")
	})

	t.Run("absent override keeps default behavior", func(t *testing.T) {
		doc := mustParse(t, "Name,Phone,Extra\nAcme,555,x")
		defaults := Analyze(doc, registry.Detect(doc.Headers))

		result := ApplyOverrides(doc, defaults, nil, discardLogger())
		assert.Equal(t, defaults.FieldMapping["Name"], result.FieldMapping["Name"])
		assert.Equal(t, defaults.FieldMapping["Phone"], result.FieldMapping["Phone"])
		assert.Equal(t, CustomPrefix+"Extra", result.FieldMapping["Extra"])
	})
}

// Recomputation must be total for any override map: every header ends up in
// exactly one of standard mapping, custom-field list, or skip list.
func TestApplyOverrides_Totality(t *testing.T) {
	registry := sniffer.NewRegistry()
	doc := mustParse(t, "Customer,Phone,Balance,Region,Notes Column\nAcme,555,10,west,hello")
	defaults := Analyze(doc, registry.Detect(doc.Headers))

	overrideSets := []map[string]string{
		nil,
		{"Customer": "skip"},
		{"Balance": "custom", "Region": "skip"},
		{"Region": "customerType", "Notes Column": "notes"},
		{"Customer": "ship", "Phone": "bogus", "Balance": "email"},
		{"Customer": "custom", "Phone": "custom", "Balance": "custom", "Region": "custom", "Notes Column": "custom"},
	}

	for _, overrides := range overrideSets {
		result := ApplyOverrides(doc, defaults, overrides, discardLogger())
		assertMappingTotal(t, doc.Headers, result)
	}
}
