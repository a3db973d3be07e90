package utils

import (
	"bytes"
	"strings"
)

// UTF8BOM is prepended to every CSV export so spreadsheet applications detect
// the encoding instead of falling back to a legacy code page.
var UTF8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV renders header plus rows as a CSV document. Every field is
// double-quoted regardless of content, with embedded quotes doubled; the
// downstream CRM importer requires the fully quoted form, which is why this
// does not use encoding/csv (it quotes only when necessary).
func WriteCSV(header []string, rows [][]string) []byte {
	var buf bytes.Buffer
	buf.Write(UTF8BOM)
	writeCSVRecord(&buf, header)
	for _, row := range rows {
		writeCSVRecord(&buf, row)
	}
	return buf.Bytes()
}

func writeCSVRecord(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteString("\r\n")
}
