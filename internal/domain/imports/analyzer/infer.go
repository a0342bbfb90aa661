package analyzer

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// booleanTokens is the closed set of values recognized as boolean columns.
var booleanTokens = map[string]bool{
	"yes": true, "no": true,
	"true": true, "false": true,
	"1": true, "0": true,
	"y": true, "n": true,
	"active": true, "inactive": true,
}

// datePatterns match the date spellings vendor exports produce. Two-digit
// year variants included.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),
	regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2}$`),
	regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`),
	regexp.MustCompile(`^\d{1,2}-\d{1,2}-\d{4}$`),
	regexp.MustCompile(`^\d{1,2}-\d{1,2}-\d{2}$`),
}

const (
	selectMinCardinality = 2
	selectMaxCardinality = 10
)

// InferType classifies a column from its sampled values.
//
// The check order is a fixed algorithm contract, not an optimization detail:
// boolean runs before date and number because tokens like "1"/"0" would
// otherwise classify as numbers, and select runs last as a pure cardinality
// fallback. Reordering silently changes the classification of ambiguous
// inputs.
func InferType(values []string) FieldType {
	nonEmpty := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			nonEmpty = append(nonEmpty, v)
		}
	}
	if len(nonEmpty) == 0 {
		return FieldTypeText
	}

	if allMatch(nonEmpty, isBooleanToken) {
		return FieldTypeBoolean
	}
	if allMatch(nonEmpty, isDateValue) {
		return FieldTypeDate
	}
	if allMatch(nonEmpty, isNumericValue) {
		return FieldTypeNumber
	}

	distinct := make(map[string]bool, len(nonEmpty))
	for _, v := range nonEmpty {
		distinct[strings.ToLower(v)] = true
	}
	if len(distinct) >= selectMinCardinality && len(distinct) <= selectMaxCardinality {
		return FieldTypeSelect
	}

	return FieldTypeText
}

func allMatch(values []string, pred func(string) bool) bool {
	for _, v := range values {
		if !pred(v) {
			return false
		}
	}
	return true
}

func isBooleanToken(v string) bool {
	return booleanTokens[strings.ToLower(v)]
}

func isDateValue(v string) bool {
	for _, p := range datePatterns {
		if p.MatchString(v) {
			return true
		}
	}
	return false
}

func isNumericValue(v string) bool {
	_, err := decimal.NewFromString(strings.ReplaceAll(v, ",", ""))
	return err == nil
}
