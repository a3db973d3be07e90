package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	t.Run("PrependsBOM", func(t *testing.T) {
		out := WriteCSV([]string{"a"}, nil)
		require.True(t, bytes.HasPrefix(out, UTF8BOM))
	})

	t.Run("QuotesEveryField", func(t *testing.T) {
		out := WriteCSV([]string{"name", "city"}, [][]string{{"Ana", "Recife"}})
		body := strings.TrimPrefix(string(out), string(UTF8BOM))
		lines := strings.Split(strings.TrimRight(body, "\r\n"), "\r\n")
		require.Len(t, lines, 2)
		assert.Equal(t, `"name","city"`, lines[0])
		assert.Equal(t, `"Ana","Recife"`, lines[1])
	})

	t.Run("DoublesEmbeddedQuotes", func(t *testing.T) {
		out := WriteCSV([]string{"note"}, [][]string{{`said "hi"`}})
		assert.Contains(t, string(out), `"said ""hi"""`)
	})

	t.Run("EmptyFieldsStayQuoted", func(t *testing.T) {
		out := WriteCSV([]string{"a", "b"}, [][]string{{"", "x"}})
		assert.Contains(t, string(out), `"","x"`)
	})
}
