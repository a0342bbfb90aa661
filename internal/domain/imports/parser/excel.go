package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hmartins/customer-directory/internal/domain/imports/normalizer"
)

// ParseWorkbook flattens an XLSX upload into the same Document shape the CSV
// tokenizer produces, so the rest of the pipeline is source-agnostic. It
// reads the first sheet whose name looks like a customer list, falling back
// to the first sheet.
func ParseWorkbook(reader io.Reader) (*Document, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := findCustomerSheet(f)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}
	if len(rows) < 2 {
		return nil, ErrTooShort
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = normalizer.CleanField(h)
	}

	doc := &Document{
		Headers: headers,
		Rows:    make([]RawRow, 0, len(rows)-1),
	}

	for i, cells := range rows[1:] {
		values := make(map[string]string, len(headers))
		populated := false
		for j, h := range headers {
			if j < len(cells) {
				v := normalizer.CleanField(cells[j])
				values[h] = v
				if v != "" {
					populated = true
				}
			} else {
				values[h] = ""
			}
		}
		if !populated {
			continue
		}
		doc.Rows = append(doc.Rows, RawRow{Line: i + 2, Values: values})
	}

	if len(doc.Rows) == 0 {
		return nil, ErrTooShort
	}
	return doc, nil
}

// findCustomerSheet prefers a sheet named like a customer export, otherwise
// returns the first sheet.
func findCustomerSheet(f *excelize.File) string {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ""
	}
	for _, name := range sheets {
		lower := strings.ToLower(name)
		if strings.Contains(lower, "customer") || strings.Contains(lower, "client") || strings.Contains(lower, "contact") {
			return name
		}
	}
	return sheets[0]
}
