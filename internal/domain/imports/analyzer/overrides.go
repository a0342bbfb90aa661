package analyzer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/hmartins/customer-directory/internal/domain/imports/parser"
)

// Override sentinel accepted from callers in addition to the standard field
// keys. "custom" forces custom-field creation under the header's own name.
const overrideCustom = "custom"

// ApplyOverrides recomputes the effective analysis from user corrections.
// The user's value wins when present: "skip" forces the skip list, "custom"
// forces custom-field creation with a fresh type inference, and any standard
// field key maps directly. An absent or empty override falls back to the
// default analysis, and a header the defaults never saw still becomes a
// custom field, so recomputation is total: every header ends up in exactly
// one of standard mapping, custom-field list, or skip list.
func ApplyOverrides(doc *parser.Document, defaults *Analysis, overrides map[string]string, logger *slog.Logger) *Analysis {
	result := &Analysis{
		DetectedFormat: defaults.DetectedFormat,
		FieldMapping:   make(map[string]string, len(doc.Headers)),
		Issues:         append([]string(nil), defaults.Issues...),
	}

	for _, header := range doc.Headers {
		if header == "" {
			continue
		}

		override, normalized := normalizeOverride(overrides[header])
		if normalized {
			// "ship" arriving where "skip" was intended is an upstream
			// value-corruption symptom. Corrected defensively but surfaced
			// so the root cause gets investigated rather than trusted.
			msg := fmt.Sprintf("override for %q arrived as \"ship\"; treating as \"skip\"", header)
			result.Issues = append(result.Issues, msg)
			logger.Warn("corrupted mapping override corrected", "header", header, "received", "ship")
		}

		switch {
		case override == Skip:
			result.FieldMapping[header] = Skip
			result.SkippedFields = append(result.SkippedFields, header)

		case override == overrideCustom:
			proposeCustomField(result, doc, header)

		case override != "" && StandardFields[override]:
			result.FieldMapping[header] = override

		case override != "":
			// Unrecognized override values are rejected loudly, then the
			// header falls through to default handling so no column is lost.
			msg := fmt.Sprintf("unrecognized mapping override %q for column %q ignored", override, header)
			result.Issues = append(result.Issues, msg)
			logger.Warn("unrecognized mapping override", "header", header, "override", override)
			applyDefault(result, doc, defaults, header)

		default:
			applyDefault(result, doc, defaults, header)
		}
	}

	return result
}

// applyDefault carries one header's default decision into the recomputed
// analysis.
func applyDefault(result *Analysis, doc *parser.Document, defaults *Analysis, header string) {
	target, ok := defaults.FieldMapping[header]
	if !ok {
		proposeCustomField(result, doc, header)
		return
	}

	switch {
	case target == Skip:
		result.FieldMapping[header] = Skip
		result.SkippedFields = append(result.SkippedFields, header)
	case strings.HasPrefix(target, CustomPrefix):
		proposeCustomField(result, doc, header)
	default:
		result.FieldMapping[header] = target
	}
}

// normalizeOverride lowercases and trims the override value and corrects the
// known "ship" corruption. The second return reports whether a correction
// happened.
func normalizeOverride(value string) (string, bool) {
	value = strings.TrimSpace(value)
	lower := strings.ToLower(value)
	if lower == "ship" {
		return Skip, true
	}
	if lower == Skip || lower == overrideCustom {
		return lower, false
	}
	return value, false
}
