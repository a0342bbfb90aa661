package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLines(t *testing.T) {
	t.Run("splits on both line ending styles", func(t *testing.T) {
		lines := SplitLines("a,b\r\nc,d\ne,f")
		assert.Equal(t, []string{"a,b", "c,d", "e,f"}, lines)
	})

	t.Run("drops blank lines", func(t *testing.T) {
		lines := SplitLines("a\n\n  \nb\n")
		assert.Equal(t, []string{"a", "b"}, lines)
	})
}

func TestParseLine(t *testing.T) {
	t.Run("simple fields match a naive split", func(t *testing.T) {
		line := "Acme Corp,555-1234,bob@example.com"
		naive := strings.Split(line, ",")
		assert.Equal(t, naive, ParseLine(line))
	})

	t.Run("quoted field keeps embedded delimiter", func(t *testing.T) {
		assert.Equal(t, []string{"Acme, Inc.", "555-1234"}, ParseLine(`"Acme, Inc.",555-1234`))
	})

	t.Run("doubled quote emits literal quote", func(t *testing.T) {
		assert.Equal(t, []string{"a,b", `c"d`}, ParseLine(`"a,b","c""d"`))
	})

	t.Run("backslash escapes", func(t *testing.T) {
		fields := ParseLine(`first\"quoted\",second\\half`)
		assert.Equal(t, []string{`first"quoted"`, `second\half`}, fields)
	})

	t.Run("escaped newline collapses into field whitespace", func(t *testing.T) {
		fields := ParseLine(`line one\nline two,next`)
		assert.Equal(t, []string{"line one line two", "next"}, fields)
	})

	t.Run("trims and cleans each field", func(t *testing.T) {
		assert.Equal(t, []string{"Acme Corp", "x"}, ParseLine(`  Acme   Corp  , x `))
	})

	t.Run("empty trailing field preserved", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b", ""}, ParseLine("a,b,"))
	})
}

func TestParse(t *testing.T) {
	t.Run("builds document keyed by header", func(t *testing.T) {
		doc, err := Parse("Name,Phone\nAcme Corp,555-1234\nBeta LLC,555-9876")
		require.NoError(t, err)

		assert.Equal(t, []string{"Name", "Phone"}, doc.Headers)
		require.Len(t, doc.Rows, 2)
		assert.Equal(t, 2, doc.Rows[0].Line)
		assert.Equal(t, "Acme Corp", doc.Rows[0].Values["Name"])
		assert.Equal(t, "555-9876", doc.Rows[1].Values["Phone"])
	})

	t.Run("pads short rows and truncates long rows", func(t *testing.T) {
		doc, err := Parse("Name,Phone,Email\nAcme\nBeta,555,b@x.com,extra")
		require.NoError(t, err)

		assert.Equal(t, "", doc.Rows[0].Values["Phone"])
		assert.Equal(t, "", doc.Rows[0].Values["Email"])
		assert.Equal(t, "b@x.com", doc.Rows[1].Values["Email"])
	})

	t.Run("rejects files without data rows", func(t *testing.T) {
		_, err := Parse("Name,Phone")
		assert.ErrorIs(t, err, ErrTooShort)

		_, err = Parse("")
		assert.ErrorIs(t, err, ErrTooShort)
	})
}

func TestDocument_SampleRows(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Name,Status\n")
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			fmt.Fprintf(&sb, "customer %d,active\n", i)
		} else {
			fmt.Fprintf(&sb, "customer %d,\n", i)
		}
	}

	doc, err := Parse(sb.String())
	require.NoError(t, err)

	samples := doc.SampleRows("Status", 5)
	assert.Len(t, samples, 5)
	for _, s := range samples {
		assert.Equal(t, "active", s)
	}
}

func TestDocument_Preview(t *testing.T) {
	doc, err := Parse("Name,Phone\nAcme,1\nBeta,2\nGamma,3")
	require.NoError(t, err)

	preview := doc.Preview(2)
	require.Len(t, preview, 2)
	assert.Equal(t, []string{"Acme", "1"}, preview[0])

	assert.Len(t, doc.Preview(10), 3)
}

func BenchmarkParseLine(b *testing.B) {
	line := `"Acme, Inc.",555-1234,"123 Main St, Suite 4","c""d",bob@example.com`
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ParseLine(line)
	}
}
