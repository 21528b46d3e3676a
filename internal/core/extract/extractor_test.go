package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPlainTextAndMarkdown(t *testing.T) {
	text, err := Extract([]byte("hello world"), ".txt")
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)

	text, err = Extract([]byte("# title"), "md")
	require.NoError(t, err)
	assert.Equal(t, "# title", text)
}

func TestExtractUnsupportedExtension(t *testing.T) {
	_, err := Extract([]byte("x"), ".exe")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtractJSONPrettyPrints(t *testing.T) {
	text, err := Extract([]byte(`{"a":1}`), ".json")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", text)
}

func TestExtractJSONInvalidFailsWhole(t *testing.T) {
	_, err := Extract([]byte(`{"a":`), ".json")
	assert.Error(t, err)
}

func TestExtractCSVSniffsDelimiterAndSummarizes(t *testing.T) {
	csv := "name;age\nalice;30\nbob;25\n"
	text, err := Extract([]byte(csv), ".csv")
	require.NoError(t, err)

	assert.Contains(t, text, "Columns (2): name, age")
	assert.Contains(t, text, "alice\t30")
	assert.Contains(t, text, "Total: 2 data rows")
	assert.NotContains(t, text, "more rows")
}

func TestExtractCSVCapsPreviewAtTenRows(t *testing.T) {
	var b strings.Builder
	b.WriteString("id,value\n")
	for i := 0; i < 15; i++ {
		b.WriteString("1,x\n")
	}
	text, err := Extract([]byte(b.String()), ".csv")
	require.NoError(t, err)

	assert.Contains(t, text, "... and 5 more rows")
	assert.Contains(t, text, "Total: 15 data rows")
}

func TestExtractCSVEmpty(t *testing.T) {
	text, err := Extract([]byte(""), ".csv")
	require.NoError(t, err)
	assert.Contains(t, text, "The CSV file is empty.")
}

func TestExtractXMLIndentedDump(t *testing.T) {
	xml := `<root><child>hello</child><child><grand>deep</grand></child></root>`
	text, err := Extract([]byte(xml), ".xml")
	require.NoError(t, err)

	assert.Contains(t, text, "<root>")
	assert.Contains(t, text, "  <child> hello")
	assert.Contains(t, text, "    <grand> deep")
}

func TestExtractXMLInvalid(t *testing.T) {
	_, err := Extract([]byte("<root><unclosed>"), ".xml")
	assert.Error(t, err)
}

func TestExtractXLSXPlaceholder(t *testing.T) {
	text, err := Extract([]byte("binary"), ".xlsx")
	require.NoError(t, err)
	assert.Contains(t, text, "not supported yet")
}

func TestTruncateShortInputUntouched(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 10))
}

func TestTruncateIdempotent(t *testing.T) {
	long := strings.Repeat("x", 500)
	once := Truncate(long, 100)
	twice := Truncate(once, 100)

	assert.Equal(t, once, twice)
	assert.True(t, strings.HasSuffix(once, truncationMarker))
	assert.True(t, strings.HasPrefix(once, strings.Repeat("x", 100)))
}

func TestTruncateCountsRunesNotBytes(t *testing.T) {
	long := strings.Repeat("é", 200)
	out := Truncate(long, 50)
	assert.True(t, strings.HasPrefix(out, strings.Repeat("é", 50)))
	assert.Equal(t, out, Truncate(out, 50))
}
