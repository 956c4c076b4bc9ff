package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FieldType is the closed set of primitive column types. The coercion engine
// switches exhaustively over these; adding a type is a compile-time-checked
// addition, not a silent fallthrough.
type FieldType int

const (
	// Text is a trimmed string column.
	Text FieldType = iota
	// Integer is a whole-number column.
	Integer
	// Decimal is a fixed-scale numeric column.
	Decimal
	// Date is a calendar column, parsed per the field's DateFormat.
	Date
	// Boolean is a token-matched true/false column.
	Boolean
)

// String returns the lowercase name used in schema files.
func (t FieldType) String() string {
	switch t {
	case Text:
		return "text"
	case Integer:
		return "integer"
	case Decimal:
		return "decimal"
	case Date:
		return "date"
	case Boolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// Valid reports whether t is one of the declared field types.
func (t FieldType) Valid() bool {
	return t >= Text && t <= Boolean
}

// ParseFieldType converts a schema-file type name to a FieldType.
func ParseFieldType(name string) (FieldType, error) {
	switch name {
	case "text":
		return Text, nil
	case "integer":
		return Integer, nil
	case "decimal":
		return Decimal, nil
	case "date":
		return Date, nil
	case "boolean":
		return Boolean, nil
	default:
		return Text, fmt.Errorf("unknown field type %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler for JSON schema files.
func (t FieldType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown field type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for JSON schema files.
func (t *FieldType) UnmarshalText(data []byte) error {
	parsed, err := ParseFieldType(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler for YAML schema files.
func (t *FieldType) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	return t.UnmarshalText([]byte(name))
}

// MarshalYAML implements yaml.Marshaler.
func (t FieldType) MarshalYAML() (any, error) {
	return t.String(), nil
}

// LineEnding is the line-ending policy for whole-document parsing.
type LineEnding int

const (
	// Auto splits on either bare LF or CRLF, accepting mixed endings
	// within one document. Serialization with Auto emits LF.
	Auto LineEnding = iota
	// LF splits only on bare "\n".
	LF
	// CRLF splits only on "\r\n".
	CRLF
)

// String returns the lowercase name used in schema files.
func (le LineEnding) String() string {
	switch le {
	case Auto:
		return "auto"
	case LF:
		return "lf"
	case CRLF:
		return "crlf"
	default:
		return "unknown"
	}
}

// ParseLineEnding converts a schema-file line-ending name to a LineEnding.
func ParseLineEnding(name string) (LineEnding, error) {
	switch name {
	case "", "auto":
		return Auto, nil
	case "lf":
		return LF, nil
	case "crlf":
		return CRLF, nil
	default:
		return Auto, fmt.Errorf("unknown line ending %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (le LineEnding) MarshalText() ([]byte, error) {
	return []byte(le.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (le *LineEnding) UnmarshalText(data []byte) error {
	parsed, err := ParseLineEnding(string(data))
	if err != nil {
		return err
	}
	*le = parsed
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (le *LineEnding) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	return le.UnmarshalText([]byte(name))
}

// MarshalYAML implements yaml.Marshaler.
func (le LineEnding) MarshalYAML() (any, error) {
	return le.String(), nil
}
