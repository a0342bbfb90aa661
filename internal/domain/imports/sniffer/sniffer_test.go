package sniffer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sage50Headers = []string{
	"Customer ID", "Customer Name", "Telephone 1",
	"Bill to Address-Line One", "Bill to City", "Bill to State",
}

var quickBooksHeaders = []string{
	"Customer", "Phone", "Email", "Bill to", "Balance",
}

func TestRegistry_Detect(t *testing.T) {
	registry := NewRegistry()

	t.Run("detects Sage 50", func(t *testing.T) {
		profile := registry.Detect(sage50Headers)
		assert.Equal(t, FormatSage50, profile.Name)
	})

	t.Run("detects QuickBooks", func(t *testing.T) {
		profile := registry.Detect(quickBooksHeaders)
		assert.Equal(t, FormatQuickBooks, profile.Name)
	})

	t.Run("falls back to generic", func(t *testing.T) {
		profile := registry.Detect([]string{"Name", "Phone", "Email"})
		assert.Equal(t, FormatGeneric, profile.Name)
	})

	t.Run("detection is case-insensitive", func(t *testing.T) {
		profile := registry.Detect([]string{"CUSTOMER ID", "bill TO address-line ONE"})
		assert.Equal(t, FormatSage50, profile.Name)
	})

	t.Run("header order never changes the result", func(t *testing.T) {
		headers := append([]string(nil), sage50Headers...)
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 20; i++ {
			rng.Shuffle(len(headers), func(a, b int) {
				headers[a], headers[b] = headers[b], headers[a]
			})
			profile := registry.Detect(headers)
			assert.Equal(t, FormatSage50, profile.Name)
		}
	})

	t.Run("partial signature does not match", func(t *testing.T) {
		// Sage needs both signature headers present.
		profile := registry.Detect([]string{"Customer ID", "Name", "Phone"})
		assert.Equal(t, FormatGeneric, profile.Name)
	})

	t.Run("signature matches whole headers only", func(t *testing.T) {
		// "Customer Name", "Telephone", and "Balance Due" contain the
		// QuickBooks signature words as fragments but not as headers.
		profile := registry.Detect([]string{"Customer Name", "Telephone", "Balance Due"})
		assert.Equal(t, FormatGeneric, profile.Name)

		target, ok := profile.TargetField("Customer Name")
		require.True(t, ok)
		assert.Equal(t, "name", target)
	})
}

func TestFormatProfile_TargetField(t *testing.T) {
	registry := NewRegistry()
	sage := registry.ByName(FormatSage50)

	target, ok := sage.TargetField("Customer Name")
	require.True(t, ok)
	assert.Equal(t, "name", target)

	target, ok = sage.TargetField("Bill to Address-Line One")
	require.True(t, ok)
	assert.Equal(t, "address1", target)

	_, ok = sage.TargetField("Favorite Color")
	assert.False(t, ok)
}

func TestFormatProfile_IsSkipped(t *testing.T) {
	registry := NewRegistry()

	qb := registry.ByName(FormatQuickBooks)
	assert.True(t, qb.IsSkipped("Balance"))
	assert.True(t, qb.IsSkipped("balance"))
	assert.False(t, qb.IsSkipped("Customer"))

	generic := registry.Generic()
	assert.False(t, generic.IsSkipped("Balance"))
}

func TestRegistry_ByName(t *testing.T) {
	registry := NewRegistry()

	assert.Equal(t, FormatSage50, registry.ByName("sage 50").Name)
	assert.Equal(t, FormatGeneric, registry.ByName("unknown vendor").Name)
}
