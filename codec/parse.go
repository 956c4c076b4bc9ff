package codec

import (
	"regexp"
	"strings"

	"github.com/c360/flatfile/coerce"
	"github.com/c360/flatfile/schema"
)

// autoEnding matches either line-ending variant, CRLF first so the CR is
// consumed together with its LF.
var autoEnding = regexp.MustCompile(`\r\n|\n`)

// Parse converts a complete document into typed records per the schema,
// collecting per-field errors without aborting. The schema's line-ending
// policy is honored strictly: LF splits only on bare "\n", CRLF only on
// "\r\n", and Auto accepts either, mixed within one document.
//
// When the schema declares a header, the first line is skipped entirely: it
// is never validated, coerced, or counted as a data record, but it still
// occupies line 1 for error numbering. Lines that are blank after trimming
// are skipped without emitting a record.
func Parse(document string, s *schema.Schema) *ParseResult {
	result := &ParseResult{}

	lines := splitLines(document, s.LineEnding)

	start := 0
	if s.HasHeader && len(lines) > 0 {
		start = 1
	}

	for i := start; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		record, errs := ParseLine(line, i+1, s)
		result.Records = append(result.Records, record)
		result.Errors = append(result.Errors, errs...)
	}
	return result
}

func splitLines(document string, policy schema.LineEnding) []string {
	switch policy {
	case schema.LF:
		return strings.Split(document, "\n")
	case schema.CRLF:
		return strings.Split(document, "\r\n")
	default:
		return autoEnding.Split(document, -1)
	}
}

// ParseLine applies the field validator and the coercion engine to every
// schema field of one line. A failing field contributes one ParseError and
// an explicit nil value; it never suppresses the remaining fields and never
// drops the record. The streaming parser shares this path, discarding the
// error list.
func ParseLine(line string, lineNumber int, s *schema.Schema) (Record, []*ParseError) {
	columns := strings.Split(line, s.Delimiter)
	record := make(Record, len(s.Fields))
	var errs []*ParseError

	for _, f := range s.Fields {
		raw := ""
		if f.Position < len(columns) {
			raw = columns[f.Position]
		}

		if err := validateField(raw, f, lineNumber); err != nil {
			errs = append(errs, err)
			record[f.Name] = nil
			continue
		}

		if strings.TrimSpace(raw) == "" {
			// Optional and empty: absent value, no error.
			record[f.Name] = nil
			continue
		}

		value, err := coerce.Parse(raw, f)
		if err != nil {
			errs = append(errs, &ParseError{
				Line:     lineNumber,
				Field:    f.Name,
				Position: f.Position,
				Message:  err.Error(),
				Raw:      raw,
			})
			record[f.Name] = nil
			continue
		}
		record[f.Name] = value
	}
	return record, errs
}
