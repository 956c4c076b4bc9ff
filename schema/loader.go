package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/c360/flatfile/errors"
)

// metaSchema is the JSON Schema every schema document must satisfy before a
// Schema is constructed from it. Structural rules New cannot express as field
// tags (uniqueness, defaults) are still enforced by New afterwards.
const metaSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "flatfile schema document",
  "type": "object",
  "required": ["delimiter", "fields"],
  "additionalProperties": false,
  "properties": {
    "delimiter": {"type": "string", "minLength": 1},
    "has_header": {"type": "boolean"},
    "line_ending": {"enum": ["auto", "lf", "crlf"]},
    "fields": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "type", "position"],
        "additionalProperties": false,
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "type": {"enum": ["text", "integer", "decimal", "date", "boolean"]},
          "position": {"type": "integer", "minimum": 0},
          "required": {"type": "boolean"},
          "decimal_places": {"type": "integer", "minimum": 0},
          "date_format": {"type": "string", "minLength": 1},
          "true_token": {"type": "string", "minLength": 1},
          "false_token": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

// document is the on-disk shape of a schema file.
type document struct {
	Delimiter  string     `json:"delimiter" yaml:"delimiter"`
	HasHeader  bool       `json:"has_header,omitempty" yaml:"has_header,omitempty"`
	LineEnding LineEnding `json:"line_ending,omitempty" yaml:"line_ending,omitempty"`
	Fields     []Field    `json:"fields" yaml:"fields"`
}

// Load reads a schema file and constructs a validated Schema from it. The
// format is chosen by extension: .json, .yaml, or .yml. The document is
// checked against the package meta-schema before construction, so a
// malformed file fails with a descriptive error rather than a zero-valued
// schema.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", errors.ErrSchemaNotFound, path)
		}
		return nil, errors.Wrap(err, "schema", "Load", "read schema file")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return Decode(data, FormatJSON)
	case ".yaml", ".yml":
		return Decode(data, FormatYAML)
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownFormat, path)
	}
}

// Format identifies a schema document encoding.
type Format int

const (
	// FormatJSON decodes the document with encoding/json.
	FormatJSON Format = iota
	// FormatYAML decodes the document with yaml.v3.
	FormatYAML
)

// Decode constructs a validated Schema from raw schema-document bytes.
func Decode(data []byte, format Format) (*Schema, error) {
	jsonData := data
	if format == FormatYAML {
		var generic any
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return nil, errors.WrapInvalid(err, "schema", "Decode", "yaml decode")
		}
		var err error
		jsonData, err = json.Marshal(generic)
		if err != nil {
			return nil, errors.WrapInvalid(err, "schema", "Decode", "yaml to json conversion")
		}
	}

	if err := validateDocument(jsonData); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, errors.WrapInvalid(err, "schema", "Decode", "schema document decode")
	}

	opts := []Option{WithLineEnding(doc.LineEnding)}
	if doc.HasHeader {
		opts = append(opts, WithHeader())
	}
	return New(doc.Delimiter, doc.Fields, opts...)
}

// validateDocument checks raw JSON bytes against the embedded meta-schema.
func validateDocument(jsonData []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(metaSchema),
		gojsonschema.NewBytesLoader(jsonData),
	)
	if err != nil {
		return errors.WrapInvalid(err, "schema", "Decode", "meta-schema validation")
	}
	if !result.Valid() {
		var b strings.Builder
		for _, desc := range result.Errors() {
			fmt.Fprintf(&b, "; %s: %s", desc.Field(), desc.Description())
		}
		return fmt.Errorf("%w%s", errors.ErrSchemaValidation, b.String())
	}
	return nil
}
