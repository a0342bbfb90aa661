package customers

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

// ExportRow is the CSV projection of a customer record. gocsv writes the
// header row from these tags.
type ExportRow struct {
	Name                  string `csv:"name"`
	Phone                 string `csv:"phone"`
	Email                 string `csv:"email"`
	Address               string `csv:"address"`
	SecondaryContactName  string `csv:"secondary contact name"`
	SecondaryContactPhone string `csv:"secondary contact phone"`
	CustomerType          string `csv:"customer type"`
	AccountNumber         string `csv:"account number"`
	CreatedDate           string `csv:"created date"`
	LastActivity          string `csv:"last activity"`
	Tags                  string `csv:"tags"`
}

// ExportCSV writes the tenant's directory as CSV. Placeholder phone and
// email sentinels are exported as empty cells so a round trip does not
// persist them as real contact data.
func ExportCSV(w io.Writer, records []*Record) error {
	rows := make([]ExportRow, 0, len(records))
	for _, record := range records {
		row := ExportRow{
			Name:                  record.Name,
			Phone:                 record.Phone,
			Email:                 record.Email,
			Address:               record.Address,
			SecondaryContactName:  record.SecondaryContactName,
			SecondaryContactPhone: record.SecondaryContactPhone,
			CustomerType:          record.CustomerType,
			AccountNumber:         record.AccountNumber,
			CreatedDate:           record.CreatedDate,
			LastActivity:          record.LastActivity,
			Tags:                  strings.Join(record.Tags, ", "),
		}
		if row.Phone == PlaceholderPhone {
			row.Phone = ""
		}
		if row.Email == PlaceholderEmail {
			row.Email = ""
		}
		rows = append(rows, row)
	}

	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to export customers: %w", err)
	}
	return nil
}
