// Package flatfile provides schema-driven translation between delimited
// flat-file text (pipe, comma, tab, or any custom separator) and typed
// in-memory records.
//
// # Overview
//
// A flat-file schema declares, per column, a name, a position, a primitive
// type, and type-specific formatting options. Given a schema, the module
// offers three operations:
//
//   - Whole-document parsing: codec.Parse converts a complete document into
//     typed records, collecting one structured error per failing field
//     without ever aborting the document (collect-and-continue).
//   - Serialization: codec.Stringify renders typed records back into
//     delimited text, the exact inverse of the parse direction.
//   - Streaming parsing: stream.Reader consumes an io.Reader incrementally,
//     reassembling lines across chunk boundaries and yielding one record at
//     a time in constant memory. Field failures are silently nulled,
//     trading observability for throughput.
//
// # Packages
//
// Core:
//   - schema: schema construction, validation, defaults, and file loading
//     (JSON and YAML, validated against an embedded meta-schema)
//   - coerce: per-type value coercion between raw text and typed values
//   - codec: whole-document parser and serializer
//   - stream: incremental chunk-boundary-safe record reader
//
// Infrastructure:
//   - errors: structured error classification and wrapping
//   - metric: Prometheus metrics registry for streaming observability
//
// # Error Regimes
//
// The module deliberately runs three distinct error policies:
//
//   - Schema construction fails fast with a descriptive error; a malformed
//     schema never reaches the parsing layer.
//   - Whole-document parsing never fails on bad data. Every field-level
//     failure becomes a codec.ParseError in the result and the field value
//     is set to an explicit nil; every non-blank data line still produces
//     exactly one record.
//   - Streaming parsing surfaces no per-field diagnostics at all; only a
//     failure of the underlying byte source propagates to the consumer.
//
// # Quoting
//
// Quoted and escaped fields (CSV quoting semantics) are out of scope. A
// delimiter occurring inside a value always splits the value.
//
// # Usage
//
// Parse a document:
//
//	s, _ := schema.New("|", []schema.Field{
//	    {Name: "id", Type: schema.Integer, Position: 0, Required: true},
//	    {Name: "name", Type: schema.Text, Position: 1},
//	    {Name: "joined", Type: schema.Date, Position: 2, DateFormat: "YYYY-MM-DD"},
//	})
//	result := codec.Parse(document, s)
//	for _, e := range result.Errors {
//	    // every error carries line, field, position, and the raw value
//	}
//
// Stream a large file:
//
//	r := stream.NewReader(file, s)
//	defer r.Close()
//	for {
//	    rec, err := r.Read(ctx)
//	    if err != nil {
//	        break // io.EOF on clean end of stream
//	    }
//	    process(rec)
//	}
package flatfile
