package codec

import (
	"strings"

	"github.com/c360/flatfile/coerce"
	"github.com/c360/flatfile/schema"
)

// Stringify renders records back into delimited text, the inverse of Parse.
// When the schema declares a header, one header line listing field names in
// position order is prepended. Fields are rendered via the coercion engine's
// format direction in position order and joined with the delimiter; lines
// are joined with "\r\n" for a CRLF schema and "\n" otherwise.
//
// Stringify never fails: absent values render as empty columns, never as a
// placeholder. Zero records yield the empty string, or just the header line
// when a header is declared.
func Stringify(records []Record, s *schema.Schema) string {
	lines := make([]string, 0, len(records)+1)
	if s.HasHeader {
		lines = append(lines, strings.Join(s.Header(), s.Delimiter))
	}

	columns := make([]string, len(s.Fields))
	for _, record := range records {
		for i, f := range s.Fields {
			columns[i] = coerce.Format(record[f.Name], f)
		}
		lines = append(lines, strings.Join(columns, s.Delimiter))
	}
	return strings.Join(lines, s.Newline())
}
