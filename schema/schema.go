package schema

import (
	"fmt"
	"sort"

	"github.com/c360/flatfile/errors"
)

// DefaultDecimalPlaces is the scale applied to Decimal fields that do not
// declare one.
const DefaultDecimalPlaces = 2

// DateFormatISO selects the general calendar-string parser instead of a
// positional token format. "YYYY-MM-DD" and the empty string are treated the
// same way.
const DateFormatISO = "ISO"

// Field describes one named, positioned, typed column within a schema.
type Field struct {
	// Name is the record key for this column. Unique within a schema.
	Name string `json:"name" yaml:"name"`

	// Type is the declared primitive type of the column.
	Type FieldType `json:"type" yaml:"type"`

	// Position is the zero-based column index. Unique within a schema.
	Position int `json:"position" yaml:"position"`

	// Required marks the column as mandatory; an empty value produces a
	// parse error in the whole-document parser.
	Required bool `json:"required,omitempty" yaml:"required,omitempty"`

	// DecimalPlaces is the scale for Decimal fields. Nil means
	// DefaultDecimalPlaces; zero is a valid explicit scale.
	DecimalPlaces *int `json:"decimal_places,omitempty" yaml:"decimal_places,omitempty"`

	// DateFormat selects date parsing for Date fields: DateFormatISO (or
	// empty, or "YYYY-MM-DD") for general calendar parsing, otherwise a
	// token format containing YYYY, MM, and DD exactly once each.
	DateFormat string `json:"date_format,omitempty" yaml:"date_format,omitempty"`

	// TrueToken and FalseToken override the default boolean literal sets.
	// When set, matching is against the single configured token only.
	TrueToken  string `json:"true_token,omitempty" yaml:"true_token,omitempty"`
	FalseToken string `json:"false_token,omitempty" yaml:"false_token,omitempty"`
}

// Places returns the effective decimal scale for the field.
func (f Field) Places() int {
	if f.DecimalPlaces == nil {
		return DefaultDecimalPlaces
	}
	return *f.DecimalPlaces
}

// Schema declares how delimited flat-file lines map to typed records.
// A Schema is constructed once via New and is immutable thereafter; it is
// safe to share across concurrent parse and serialize calls.
type Schema struct {
	// Delimiter separates columns. May be multi-character, never empty.
	Delimiter string

	// Fields is ordered by ascending position.
	Fields []Field

	// HasHeader marks the first line as a header: skipped on parse,
	// emitted on serialize.
	HasHeader bool

	// LineEnding is the line-ending policy for whole-document parsing and
	// serialization.
	LineEnding LineEnding
}

// Option configures optional schema settings.
type Option func(*Schema)

// WithHeader marks the schema as having a header line.
func WithHeader() Option {
	return func(s *Schema) {
		s.HasHeader = true
	}
}

// WithLineEnding sets the line-ending policy. Defaults to Auto.
func WithLineEnding(le LineEnding) Option {
	return func(s *Schema) {
		s.LineEnding = le
	}
}

// New constructs a validated Schema. It fails fast on any structural
// violation: empty delimiter, no fields, duplicate or empty names, duplicate
// or negative positions, or a negative decimal scale. Fields are copied and
// sorted by ascending position; defaults are filled in so downstream
// consumers never see an unset option.
func New(delimiter string, fields []Field, opts ...Option) (*Schema, error) {
	if delimiter == "" {
		return nil, errors.ErrMissingDelimiter
	}
	if len(fields) == 0 {
		return nil, errors.ErrNoFields
	}

	ordered := make([]Field, len(fields))
	copy(ordered, fields)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	names := make(map[string]struct{}, len(ordered))
	positions := make(map[int]struct{}, len(ordered))
	for i, f := range ordered {
		if f.Name == "" {
			return nil, fmt.Errorf("field at position %d: %w", f.Position, errors.ErrEmptyFieldName)
		}
		if f.Position < 0 {
			return nil, fmt.Errorf("field %q: %w", f.Name, errors.ErrNegativePosition)
		}
		if !f.Type.Valid() {
			return nil, fmt.Errorf("field %q: %w", f.Name, errors.ErrInvalidFieldType)
		}
		if _, dup := names[f.Name]; dup {
			return nil, fmt.Errorf("field %q: %w", f.Name, errors.ErrDuplicateFieldName)
		}
		if _, dup := positions[f.Position]; dup {
			return nil, fmt.Errorf("field %q at position %d: %w", f.Name, f.Position, errors.ErrDuplicatePosition)
		}
		if f.DecimalPlaces != nil && *f.DecimalPlaces < 0 {
			return nil, fmt.Errorf("field %q: decimal places must be non-negative", f.Name)
		}
		names[f.Name] = struct{}{}
		positions[f.Position] = struct{}{}

		if f.DecimalPlaces == nil {
			places := DefaultDecimalPlaces
			ordered[i].DecimalPlaces = &places
		}
		if f.Type == Date && f.DateFormat == "" {
			ordered[i].DateFormat = DateFormatISO
		}
	}

	s := &Schema{
		Delimiter:  delimiter,
		Fields:     ordered,
		LineEnding: Auto,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Header returns the field names in position order, as emitted on the
// header line.
func (s *Schema) Header() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Field returns the field with the given name, if declared.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Newline returns the line separator used when serializing with this
// schema: "\r\n" for CRLF, "\n" otherwise.
func (s *Schema) Newline() string {
	if s.LineEnding == CRLF {
		return "\r\n"
	}
	return "\n"
}
