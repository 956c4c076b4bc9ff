package codec

import (
	"fmt"
	"strings"

	"github.com/c360/flatfile/schema"
)

// validateField checks a raw column value against field-level constraints
// before coercion is attempted. The only current rule: a required field must
// not be empty after trimming. When the check fires, coercion is skipped and
// the field resolves to an explicit nil.
func validateField(raw string, f schema.Field, lineNumber int) *ParseError {
	if f.Required && strings.TrimSpace(raw) == "" {
		return &ParseError{
			Line:     lineNumber,
			Field:    f.Name,
			Position: f.Position,
			Message:  fmt.Sprintf("required field %q (position %d) is empty", f.Name, f.Position),
			Raw:      raw,
		}
	}
	return nil
}
