// Package normalizer cleans raw uploaded text and individual field values
// before they enter the import pipeline. It never fails: anything it cannot
// classify is passed through.
package normalizer

import (
	"strings"
	"unicode"
)

// typographicSubstitutions maps common typographic characters found in
// vendor exports (Word copy/paste artifacts, smart punctuation) to their
// plain ASCII equivalents. Applied per field after unquoting.
var typographicSubstitutions = map[rune]string{
	'‘': "'",   // left single quote
	'’': "'",   // right single quote
	'‚': "'",   // single low quote
	'“': `"`,   // left double quote
	'”': `"`,   // right double quote
	'„': `"`,   // double low quote
	'–': "-",   // en dash
	'—': "-",   // em dash
	' ': " ",   // non-breaking space
	'•': "*",   // bullet
	'…': "...", // ellipsis
	'™': "TM",  // trademark
	'©': "(c)", // copyright
	'®': "(r)", // registered
	'°': "deg", // degree
	'×': "x",   // multiplication
	'÷': "/",   // division
}

// NormalizeContent prepares raw uploaded text for line splitting. It strips a
// leading byte-order mark, replaces the Unicode replacement character with
// '?', and removes non-printable control characters while keeping newline,
// carriage return, and tab intact so row/field structure survives.
func NormalizeContent(content string) string {
	content = strings.TrimPrefix(content, "\uFEFF")

	var b strings.Builder
	b.Grow(len(content))
	for _, r := range content {
		switch {
		case r == '�':
			b.WriteByte('?')
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteRune(r)
		case r < 0x20 || (r >= 0x7F && r <= 0x9F):
			// drop control characters
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanField normalizes a single tokenized field: strips one layer of
// wrapping quotes, applies the typographic substitution table, collapses
// whitespace runs and trims.
func CleanField(field string) string {
	field = strings.TrimSpace(field)
	if len(field) >= 2 && strings.HasPrefix(field, `"`) && strings.HasSuffix(field, `"`) {
		field = field[1 : len(field)-1]
	}

	var b strings.Builder
	b.Grow(len(field))
	for _, r := range field {
		if repl, ok := typographicSubstitutions[r]; ok {
			b.WriteString(repl)
		} else {
			b.WriteRune(r)
		}
	}

	return CollapseWhitespace(b.String())
}

// CollapseWhitespace replaces runs of whitespace with a single space and
// trims the result.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CleanText sanitizes free-text values (names, addresses, notes): trims and
// strips angle brackets so stray markup cannot leak into stored records.
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	return CollapseWhitespace(s)
}

// CleanPhone trims a phone value, keeping digits and common phone
// punctuation. Returns the cleaned string and whether it contains at least
// one digit (the leniency bar for a usable phone).
func CleanPhone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	hasDigit := false
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
			return r
		case r == '+' || r == '-' || r == '(' || r == ')' || r == '.' || r == ' ' || r == 'x':
			return r
		default:
			return -1
		}
	}, s)
	return CollapseWhitespace(cleaned), hasDigit
}

// DigitsOnly strips every non-digit rune. Used for phone equality checks.
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// CleanEmail lowercases and trims an email value and reports whether it
// looks like an address. Callers substitute a placeholder when it does not.
func CleanEmail(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 {
		return s, false
	}
	domain := s[at+1:]
	if !strings.Contains(domain, ".") || strings.ContainsAny(s, " \t") {
		return s, false
	}
	return s, true
}

// ParseTags splits a comma-separated tag value into normalized tags:
// lowercased, trimmed, restricted to alphanumerics, dash, underscore and
// space, each 1-50 characters. Invalid entries are dropped, not errors.
func ParseTags(s string) []string {
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.ToLower(strings.TrimSpace(part))
		tag = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) && r < 0x80 || unicode.IsDigit(r) || r == '-' || r == '_' || r == ' ' {
				return r
			}
			return -1
		}, tag)
		tag = CollapseWhitespace(tag)
		if len(tag) >= 1 && len(tag) <= 50 {
			tags = append(tags, tag)
		}
	}
	return tags
}
