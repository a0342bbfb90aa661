// Package parser tokenizes normalized CSV text into headers and rows.
// It uses a character-level scanner rather than encoding/csv so it can
// tolerate the half-escaped output real vendor exports produce: backslash
// escapes mixed with standard CSV quote doubling, embedded delimiters, and
// smart punctuation.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/hmartins/customer-directory/internal/domain/imports/normalizer"
)

var (
	ErrTooShort = errors.New("file must contain a header row and at least one data row")
	ErrNoHeader = errors.New("could not read a header row")
)

// RawRow is one tokenized data line keyed by header. Values are already
// field-cleaned but not yet type-sanitized.
type RawRow struct {
	Line   int // 1-indexed source line number
	Values map[string]string
}

// Document is the tokenized form of one upload: the header row plus every
// non-blank data row in file order.
type Document struct {
	Headers []string
	Rows    []RawRow
}

var lineSplitter = regexp.MustCompile(`\r?\n`)

// SplitLines splits normalized content into logical lines, dropping blanks.
// It must be called on output of normalizer.NormalizeContent.
//
// Known limitation: a quoted field containing a literal newline is split in
// two here, before quote state is tracked. Vendor exports in practice do not
// produce them; a streaming quote-aware joiner would be required to lift this.
func SplitLines(content string) []string {
	raw := lineSplitter.Split(content, -1)
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// ParseLine tokenizes a single line into fields. Single-pass scanner with
// quote and escape state:
//   - backslash escapes: \n \t \r \\ \" map to their literals, anything else
//     passes through unchanged
//   - a doubled quote inside a quoted field emits one literal quote
//   - the comma delimiter only terminates a field outside quotes
//
// Every emitted field goes through normalizer.CleanField.
func ParseLine(line string) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false
	escaped := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if escaped {
			switch ch {
			case 'n':
				current.WriteByte('\n')
			case 't':
				current.WriteByte('\t')
			case 'r':
				current.WriteByte('\r')
			case '\\':
				current.WriteByte('\\')
			case '"':
				current.WriteByte('"')
			default:
				current.WriteRune(ch)
			}
			escaped = false
			continue
		}

		switch {
		case ch == '\\' && i+1 < len(runes) && strings.ContainsRune(`ntr\"`, runes[i+1]):
			escaped = true
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			fields = append(fields, normalizer.CleanField(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	fields = append(fields, normalizer.CleanField(current.String()))
	return fields
}

// Parse tokenizes a whole upload. The first non-blank line is the header
// row; every following line becomes a RawRow keyed by header. Rows shorter
// than the header are padded with empty values, longer rows have their
// extras dropped.
func Parse(content string) (*Document, error) {
	lines := SplitLines(content)
	if len(lines) < 2 {
		return nil, ErrTooShort
	}

	headers := ParseLine(lines[0])
	if len(headers) == 0 || (len(headers) == 1 && headers[0] == "") {
		return nil, ErrNoHeader
	}

	doc := &Document{
		Headers: headers,
		Rows:    make([]RawRow, 0, len(lines)-1),
	}

	for i, line := range lines[1:] {
		fields := ParseLine(line)
		values := make(map[string]string, len(headers))
		for j, h := range headers {
			if j < len(fields) {
				values[h] = fields[j]
			} else {
				values[h] = ""
			}
		}
		doc.Rows = append(doc.Rows, RawRow{Line: i + 2, Values: values})
	}

	return doc, nil
}

// SampleRows returns up to max rows that have at least one populated value
// for the given header. Used for type inference on a prefix of the file.
func (d *Document) SampleRows(header string, max int) []string {
	samples := make([]string, 0, max)
	for _, row := range d.Rows {
		if v := strings.TrimSpace(row.Values[header]); v != "" {
			samples = append(samples, v)
			if len(samples) >= max {
				break
			}
		}
	}
	return samples
}

// Preview returns the first n rows as ordered field slices for the
// mapping-confirmation UI.
func (d *Document) Preview(n int) [][]string {
	if n > len(d.Rows) {
		n = len(d.Rows)
	}
	preview := make([][]string, 0, n)
	for _, row := range d.Rows[:n] {
		fields := make([]string, len(d.Headers))
		for i, h := range d.Headers {
			fields[i] = row.Values[h]
		}
		preview = append(preview, fields)
	}
	return preview
}

// String implements fmt.Stringer for debug logging.
func (d *Document) String() string {
	return fmt.Sprintf("document{headers=%d rows=%d}", len(d.Headers), len(d.Rows))
}
