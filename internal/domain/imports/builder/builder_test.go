package builder

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmartins/customer-directory/internal/domain/customers"
	"github.com/hmartins/customer-directory/internal/domain/imports/parser"
)

var buildTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func row(line int, values map[string]string) parser.RawRow {
	return parser.RawRow{Line: line, Values: values}
}

func TestBuild(t *testing.T) {
	tenantID := uuid.New()

	t.Run("maps and sanitizes standard fields", func(t *testing.T) {
		mapping := map[string]string{
			"Name":  "name",
			"Phone": "phone",
			"Email": "email",
			"Tags":  "tags",
		}
		record, errs := Build(row(2, map[string]string{
			"Name":  "  Acme Corp ",
			"Phone": "(555) 123-4567",
			"Email": "Bob@Example.COM",
			"Tags":  "VIP, Net-30",
		}), mapping, tenantID, buildTime)

		require.NotNil(t, record)
		assert.Empty(t, errs)
		assert.Equal(t, tenantID, record.TenantID)
		assert.Equal(t, "Acme Corp", record.Name)
		assert.Equal(t, "(555) 123-4567", record.Phone)
		assert.Equal(t, "bob@example.com", record.Email)
		assert.Equal(t, []string{"vip", "net-30"}, record.Tags)
		assert.Equal(t, buildTime, record.CreatedAt)
		assert.Equal(t, buildTime, record.UpdatedAt)
	})

	t.Run("reassembles address from components", func(t *testing.T) {
		mapping := map[string]string{
			"Name": "name", "Address": "address1", "City": "city",
			"State": "state", "Zip": "zip",
		}
		record, _ := Build(row(2, map[string]string{
			"Name": "Acme", "Address": "123 Main St", "City": "Springfield",
			"State": "IL", "Zip": "62704",
		}), mapping, tenantID, buildTime)

		require.NotNil(t, record)
		assert.Equal(t, "123 Main St, Springfield, IL, 62704", record.Address)
	})

	t.Run("lone address1 passes through", func(t *testing.T) {
		mapping := map[string]string{"Name": "name", "Address": "address1"}
		record, _ := Build(row(2, map[string]string{
			"Name": "Acme", "Address": "123 Main St",
		}), mapping, tenantID, buildTime)

		require.NotNil(t, record)
		assert.Equal(t, "123 Main St", record.Address)
	})

	t.Run("missing name is row-fatal", func(t *testing.T) {
		mapping := map[string]string{"Name": "name", "Phone": "phone"}
		record, errs := Build(row(37, map[string]string{
			"Name": "  ", "Phone": "555-1234",
		}), mapping, tenantID, buildTime)

		assert.Nil(t, record)
		require.Len(t, errs, 1)
		assert.Equal(t, 37, errs[0].Row)
		assert.Equal(t, "name", errs[0].Field)
	})

	t.Run("empty phone gets the placeholder", func(t *testing.T) {
		mapping := map[string]string{"Name": "name", "Phone": "phone"}
		record, errs := Build(row(2, map[string]string{
			"Name": "Acme", "Phone": "",
		}), mapping, tenantID, buildTime)

		require.NotNil(t, record)
		assert.Empty(t, errs)
		assert.Equal(t, customers.PlaceholderPhone, record.Phone)
	})

	t.Run("digitless phone gets the placeholder", func(t *testing.T) {
		mapping := map[string]string{"Name": "name", "Phone": "phone"}
		record, _ := Build(row(2, map[string]string{
			"Name": "Acme", "Phone": "none",
		}), mapping, tenantID, buildTime)

		require.NotNil(t, record)
		assert.Equal(t, customers.PlaceholderPhone, record.Phone)
	})

	t.Run("invalid email is replaced and reported", func(t *testing.T) {
		mapping := map[string]string{"Name": "name", "Email": "email"}
		record, errs := Build(row(4, map[string]string{
			"Name": "Acme", "Email": "not-an-email",
		}), mapping, tenantID, buildTime)

		require.NotNil(t, record)
		assert.Equal(t, customers.PlaceholderEmail, record.Email)
		require.Len(t, errs, 1)
		assert.Equal(t, "email", errs[0].Field)
		assert.Equal(t, 4, errs[0].Row)
	})

	t.Run("custom targets land in CustomFields", func(t *testing.T) {
		mapping := map[string]string{"Name": "name", "Region": "custom_Region"}
		record, _ := Build(row(2, map[string]string{
			"Name": "Acme", "Region": "West",
		}), mapping, tenantID, buildTime)

		require.NotNil(t, record)
		assert.Equal(t, "West", record.CustomFields["Region"])
	})

	t.Run("skip targets are dropped", func(t *testing.T) {
		mapping := map[string]string{"Name": "name", "Balance": "skip"}
		record, _ := Build(row(2, map[string]string{
			"Name": "Acme", "Balance": "120.00",
		}), mapping, tenantID, buildTime)

		require.NotNil(t, record)
		assert.Empty(t, record.CustomFields)
	})

	t.Run("unrecognized target keeps data under the header name", func(t *testing.T) {
		mapping := map[string]string{"Name": "name", "Weird": "somethingNew"}
		record, _ := Build(row(2, map[string]string{
			"Name": "Acme", "Weird": "value",
		}), mapping, tenantID, buildTime)

		require.NotNil(t, record)
		assert.Equal(t, "value", record.CustomFields["Weird"])
	})

	t.Run("values under an empty header are dropped", func(t *testing.T) {
		mapping := map[string]string{"Name": "name"}
		record, errs := Build(row(2, map[string]string{
			"Name": "Acme", "": "stray",
		}), mapping, tenantID, buildTime)

		require.NotNil(t, record)
		assert.Empty(t, errs)
		assert.NotContains(t, record.CustomFields, "")
		assert.Empty(t, record.CustomFields)
	})
}

func TestBuild_OwnershipHistory(t *testing.T) {
	tenantID := uuid.New()

	t.Run("synthesized from name and created date", func(t *testing.T) {
		mapping := map[string]string{"Name": "name", "Since": "createdDate"}
		record, _ := Build(row(2, map[string]string{
			"Name": "Acme", "Since": "3/15/2020",
		}), mapping, tenantID, buildTime)

		require.NotNil(t, record)
		require.Len(t, record.OwnershipHistory, 1)
		entry := record.OwnershipHistory[0]
		assert.Equal(t, "Acme", entry.Name)
		assert.True(t, entry.Current)
		assert.Equal(t, time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC), entry.Timestamp)
	})

	t.Run("falls back to now when created date is absent or unparseable", func(t *testing.T) {
		mapping := map[string]string{"Name": "name", "Since": "createdDate"}
		record, _ := Build(row(2, map[string]string{
			"Name": "Acme", "Since": "sometime in spring",
		}), mapping, tenantID, buildTime)

		require.NotNil(t, record)
		require.Len(t, record.OwnershipHistory, 1)
		assert.Equal(t, buildTime, record.OwnershipHistory[0].Timestamp)
	})

	t.Run("mapped ownership column suppresses synthesis", func(t *testing.T) {
		mapping := map[string]string{"Name": "name", "Owner": "ownershipHistory"}
		record, _ := Build(row(2, map[string]string{
			"Name": "Acme", "Owner": "Pat Smith",
		}), mapping, tenantID, buildTime)

		require.NotNil(t, record)
		require.Len(t, record.OwnershipHistory, 1)
		assert.Equal(t, "Pat Smith", record.OwnershipHistory[0].Name)
	})
}
