package customers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRecord_Merge(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	createdAt := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	base := func() *Record {
		return &Record{
			ID:        uuid.MustParse("11111111-1111-1111-1111-111111111111"),
			Name:      "Acme Corp",
			Phone:     "555-1234",
			Email:     "old@acme.test",
			Address:   "1 Old Rd",
			Tags:      []string{"vip"},
			CreatedAt: createdAt,
		}
	}

	t.Run("copies non-empty fields and preserves identity", func(t *testing.T) {
		r := base()
		r.Merge(&Record{Name: "Acme Corporation", Phone: "5551234", Address: "2 New Ave"}, now)

		assert.Equal(t, uuid.MustParse("11111111-1111-1111-1111-111111111111"), r.ID)
		assert.Equal(t, createdAt, r.CreatedAt)
		assert.Equal(t, now, r.UpdatedAt)
		assert.Equal(t, "Acme Corporation", r.Name)
		assert.Equal(t, "5551234", r.Phone)
		assert.Equal(t, "2 New Ave", r.Address)
		assert.Equal(t, "old@acme.test", r.Email)
	})

	t.Run("placeholder phone and email never overwrite real values", func(t *testing.T) {
		r := base()
		r.Merge(&Record{Phone: PlaceholderPhone, Email: PlaceholderEmail}, now)

		assert.Equal(t, "555-1234", r.Phone)
		assert.Equal(t, "old@acme.test", r.Email)
	})

	t.Run("tags append and custom fields merge", func(t *testing.T) {
		r := base()
		r.CustomFields = map[string]any{"region": "west"}
		r.Merge(&Record{
			Tags:         []string{"net-30"},
			CustomFields: map[string]any{"score": "10", "region": "east"},
		}, now)

		assert.Equal(t, []string{"vip", "net-30"}, r.Tags)
		assert.Equal(t, "east", r.CustomFields["region"])
		assert.Equal(t, "10", r.CustomFields["score"])
	})

	t.Run("empty source leaves fields alone", func(t *testing.T) {
		r := base()
		r.Merge(&Record{}, now)

		assert.Equal(t, "Acme Corp", r.Name)
		assert.Equal(t, "555-1234", r.Phone)
		assert.Equal(t, now, r.UpdatedAt)
	})
}
