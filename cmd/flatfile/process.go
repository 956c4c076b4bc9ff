package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/c360/flatfile/codec"
	"github.com/c360/flatfile/metric"
	"github.com/c360/flatfile/schema"
	"github.com/c360/flatfile/stream"
)

// errorLogLimit caps per-file parse error logging; the totals are always
// reported.
const errorLogLimit = 20

// processor converts input files against a fixed schema pair.
type processor struct {
	schema    *schema.Schema
	outSchema *schema.Schema
	streaming bool
	registry  *metric.Registry
	logger    *slog.Logger
}

// processFile translates one input file and writes the result next to it:
// "<input>.jsonl" for JSON lines output, "<input>.out" for re-serialized
// delimited text.
func (p *processor) processFile(ctx context.Context, path string) error {
	logger := p.logger.With("file", path)

	out, err := os.Create(p.outputPath(path))
	if err != nil {
		return fmt.Errorf("create output for %s: %w", path, err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)

	if p.streaming {
		err = p.streamFile(ctx, path, w, logger)
	} else {
		err = p.parseFile(path, w, logger)
	}
	if err != nil {
		return err
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush output for %s: %w", path, err)
	}
	logger.Info("File processed", "output", p.outputPath(path))
	return nil
}

func (p *processor) outputPath(path string) string {
	ext := ".jsonl"
	if p.outSchema != nil {
		ext = ".out"
	}
	return path + ext
}

// parseFile buffers the whole document and parses collect-and-continue,
// reporting every field-level error before writing the records out.
func (p *processor) parseFile(path string, w io.Writer, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	result := codec.Parse(string(data), p.schema)
	for i, parseErr := range result.Errors {
		if i == errorLogLimit {
			logger.Warn("Further parse errors suppressed", "remaining", len(result.Errors)-errorLogLimit)
			break
		}
		logger.Warn("Parse error", "line", parseErr.Line, "field", parseErr.Field, "cause", parseErr.Message)
	}
	logger.Info("Document parsed", "records", len(result.Records), "errors", len(result.Errors))

	if p.outSchema != nil {
		text := codec.Stringify(result.Records, p.outSchema)
		if text == "" {
			return nil
		}
		_, err := io.WriteString(w, text+p.outSchema.Newline())
		return err
	}

	enc := json.NewEncoder(w)
	for _, record := range result.Records {
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("encode record from %s: %w", path, err)
		}
	}
	return nil
}

// streamFile parses incrementally in constant memory; bad fields are
// silently nulled, so the only errors here are I/O failures.
func (p *processor) streamFile(ctx context.Context, path string, w io.Writer, logger *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	r := stream.NewReader(f, p.schema,
		stream.WithLogger(logger),
		stream.WithMetrics(p.registry, filepath.Base(path)),
	)

	// Serialize one record per line; the header, if any, goes out once.
	var lineSchema *schema.Schema
	if p.outSchema != nil {
		headerless := *p.outSchema
		headerless.HasHeader = false
		lineSchema = &headerless
		if p.outSchema.HasHeader {
			header := codec.Stringify(nil, p.outSchema)
			if _, err := io.WriteString(w, header+p.outSchema.Newline()); err != nil {
				return fmt.Errorf("write header for %s: %w", path, err)
			}
		}
	}

	count := 0
	enc := json.NewEncoder(w)
	for record := range r.All(ctx) {
		if lineSchema != nil {
			line := codec.Stringify([]codec.Record{record}, lineSchema)
			if _, err := io.WriteString(w, line+lineSchema.Newline()); err != nil {
				return fmt.Errorf("write record from %s: %w", path, err)
			}
		} else {
			if err := enc.Encode(record); err != nil {
				return fmt.Errorf("encode record from %s: %w", path, err)
			}
		}
		count++
	}
	if err := r.Err(); err != nil {
		return err
	}

	logger.Info("Stream processed", "records", count)
	return ctx.Err()
}
