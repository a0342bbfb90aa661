package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferType(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   FieldType
	}{
		{"booleans", []string{"yes", "no", "yes"}, FieldTypeBoolean},
		{"boolean digits stay boolean", []string{"1", "0", "1"}, FieldTypeBoolean},
		{"active and inactive", []string{"Active", "Inactive"}, FieldTypeBoolean},
		{"slash dates", []string{"1/2/2024", "3/4/2024"}, FieldTypeDate},
		{"iso dates", []string{"2024-01-02", "2024-03-04"}, FieldTypeDate},
		{"two digit year dates", []string{"1/2/24", "3/4/24"}, FieldTypeDate},
		{"numbers", []string{"1", "2", "3"}, FieldTypeNumber},
		{"decimals and thousands", []string{"1,250.50", "-3.25", "0.0"}, FieldTypeNumber},
		{"small cardinality is select", []string{"red", "blue", "red", "green"}, FieldTypeSelect},
		{"free text", []string{"a free text sentence", "another one"}, FieldTypeText},
		{"empty sample is text", nil, FieldTypeText},
		{"blank values ignored", []string{"", "  ", "yes", "no"}, FieldTypeBoolean},
		{"single repeated value is text", []string{"same", "same", "same"}, FieldTypeText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferType(tt.values))
		})
	}
}

// The check order is a fixed contract: boolean before date before number,
// select last. These inputs are ambiguous across categories and pin the
// ordering down.
func TestInferType_CheckOrder(t *testing.T) {
	t.Run("digit tokens resolve boolean not number", func(t *testing.T) {
		assert.Equal(t, FieldTypeBoolean, InferType([]string{"0", "1", "0", "1"}))
	})

	t.Run("mixed digits resolve number not select", func(t *testing.T) {
		assert.Equal(t, FieldTypeNumber, InferType([]string{"1", "2", "1", "2"}))
	})

	t.Run("dates resolve date not select", func(t *testing.T) {
		assert.Equal(t, FieldTypeDate, InferType([]string{"1/2/2024", "1/2/2024", "3/4/2024"}))
	})

	t.Run("eleven distinct values overflow select to text", func(t *testing.T) {
		values := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}
		assert.Equal(t, FieldTypeText, InferType(values))
	})
}
