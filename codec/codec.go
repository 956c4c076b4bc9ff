// Package codec implements whole-document parsing and serialization of
// delimited flat-file text against a schema.
//
// Parsing is collect-and-continue: no error ever escapes a Parse call for
// bad data. Every field-level failure is recorded as a ParseError, the
// field's value is set to an explicit nil, and processing continues to the
// end of the document. Every non-blank data line produces exactly one
// record, regardless of how many of its fields failed.
//
// Both directions are pure computations over in-memory strings and are safe
// to invoke concurrently against the same immutable schema.
package codec

import "fmt"

// Record maps field names to typed values. Every schema field is always
// present as a key; a failed or empty field holds an explicit nil value,
// never a missing key.
type Record map[string]any

// ParseError describes one failed field on one line. One entry is produced
// per failing field, independent of other fields on the same line.
type ParseError struct {
	// Line is the 1-indexed line number in the original document; a header
	// line occupies line 1 and data numbering continues after it.
	Line int
	// Field is the schema field name.
	Field string
	// Position is the column position of the field.
	Position int
	// Message is the human-readable cause.
	Message string
	// Raw is the offending raw column substring.
	Raw string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("flatfile: parse error on line %d, field %q (position %d): %s",
		e.Line, e.Field, e.Position, e.Message)
}

// ParseResult is the outcome of one whole-document parse: one record per
// non-blank data line, in document order, plus every field-level error
// encountered along the way. A fresh result is created per Parse call.
type ParseResult struct {
	Records []Record
	Errors  []*ParseError
}
