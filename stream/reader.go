// Package stream implements incremental parsing of delimited flat-file
// records from a byte stream.
//
// The Reader consumes its source in fixed-size chunks, reassembles logical
// lines across chunk boundaries (including multi-byte UTF-8 sequences and
// CRLF pairs split between reads), and yields one typed record per line in
// constant memory. Unlike the whole-document parser, field failures produce
// no diagnostics: the field value is silently set to nil, trading
// observability for throughput. Only a failure of the underlying byte
// source propagates to the consumer.
//
// A Reader owns its source exclusively for the duration of the traversal
// and is not safe for concurrent use. Close releases the source (when it
// implements io.Closer) and must be called on every exit path; the All
// iterator does this automatically.
package stream

import (
	"bytes"
	"context"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/c360/flatfile/codec"
	ferrors "github.com/c360/flatfile/errors"
	"github.com/c360/flatfile/metric"
	"github.com/c360/flatfile/schema"
)

const defaultChunkSize = 4096

// Reader yields typed records from a byte stream, one line at a time.
type Reader struct {
	src    io.Reader
	schema *schema.Schema
	logger *slog.Logger

	chunk []byte // scratch buffer for source reads
	buf   []byte // bytes after the last complete line terminator

	srcErr        error // sticky source error, io.EOF included
	err           error // last non-EOF source failure, for Err()
	line          int   // 1-indexed count of lines seen, header included
	headerSkipped bool
	closed        bool

	metrics *Metrics
}

// Option configures a Reader.
type Option func(*Reader)

// WithChunkSize sets the size of source reads. Values below 1 are ignored.
func WithChunkSize(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.chunk = make([]byte, n)
		}
	}
}

// WithLogger attaches a structured logger. Nulled fields are reported at
// debug level; without a logger the reader is silent.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		r.logger = logger
	}
}

// WithMetrics enables Prometheus metrics under the given component name.
// A nil registry disables metrics.
func WithMetrics(registry *metric.Registry, name string) Option {
	return func(r *Reader) {
		r.metrics = newMetrics(registry, name)
	}
}

// NewReader creates a Reader over src, panicking if src is nil. The stream
// may use either line-ending style, mixed freely, regardless of the
// schema's declared policy; stream sources are not assumed to be
// consistent.
func NewReader(src io.Reader, s *schema.Schema, opts ...Option) *Reader {
	if src == nil {
		panic(ferrors.ErrNilSource.Error())
	}

	r := &Reader{
		src:    src,
		schema: s,
		chunk:  make([]byte, defaultChunkSize),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read returns the next record from the stream. It returns io.EOF when the
// stream is exhausted, ctx.Err() if the context is cancelled, and a wrapped
// source error if the underlying read fails. Field-level failures never
// surface here; the affected fields are nil in the returned record.
func (r *Reader) Read(ctx context.Context) (codec.Record, error) {
	if r.closed {
		return nil, ferrors.ErrReaderClosed
	}

	for {
		// Emit every complete buffered line before touching the source.
		for {
			idx := bytes.IndexByte(r.buf, '\n')
			if idx < 0 {
				break
			}
			line := strings.TrimSuffix(string(r.buf[:idx]), "\r")
			r.buf = r.buf[idx+1:]
			if record, ok := r.processLine(line); ok {
				return record, nil
			}
		}

		if r.srcErr != nil {
			if r.srcErr == io.EOF {
				// A final line without a terminator is still a line.
				if len(r.buf) > 0 {
					line := strings.TrimSuffix(string(r.buf), "\r")
					r.buf = nil
					if record, ok := r.processLine(line); ok {
						return record, nil
					}
				}
				return nil, io.EOF
			}
			r.err = r.srcErr
			return nil, ferrors.WrapTransient(r.srcErr, "stream.Reader", "Read", "source read")
		}

		// The one suspension point: requesting the next chunk.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := r.src.Read(r.chunk)
		if n > 0 {
			// An incomplete multi-byte sequence or a dangling CR at the
			// chunk edge simply stays in buf until its line completes.
			r.buf = append(r.buf, r.chunk[:n]...)
			if r.metrics != nil {
				r.metrics.bytesRead.Add(float64(n))
			}
		}
		if err != nil {
			r.srcErr = err
		}
	}
}

// processLine advances the line counter and converts one logical line into
// a record. It reports false for lines that emit nothing: the header line
// and blank lines.
func (r *Reader) processLine(line string) (codec.Record, bool) {
	r.line++

	if r.schema.HasHeader && !r.headerSkipped {
		r.headerSkipped = true
		return nil, false
	}
	if strings.TrimSpace(line) == "" {
		return nil, false
	}

	if r.metrics != nil {
		r.metrics.linesProcessed.Inc()
		r.metrics.lineLength.Observe(float64(len(line)))
	}

	record, errs := codec.ParseLine(line, r.line, r.schema)
	if len(errs) > 0 {
		if r.metrics != nil {
			r.metrics.fieldsNulled.Add(float64(len(errs)))
		}
		if r.logger != nil {
			r.logger.Debug("nulled failing fields", "line", r.line, "fields", len(errs))
		}
	}

	if r.metrics != nil {
		r.metrics.recordsEmitted.Inc()
	}
	return record, true
}

// ReadAll exhausts the stream, collecting records until io.EOF and
// returning the first source error encountered, if any.
func (r *Reader) ReadAll(ctx context.Context) ([]codec.Record, error) {
	var records []codec.Record
	for {
		record, err := r.Read(ctx)
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
}

// All returns a single-use iterator over the remaining records. The reader
// is closed when iteration ends, whether by exhaustion, early break, or a
// source failure; check Err afterwards to distinguish the latter.
func (r *Reader) All(ctx context.Context) iter.Seq[codec.Record] {
	return func(yield func(codec.Record) bool) {
		defer r.Close() //nolint:errcheck // release is unconditional
		for {
			record, err := r.Read(ctx)
			if err != nil {
				return
			}
			if !yield(record) {
				return
			}
		}
	}
}

// Err returns the last source failure observed, or nil. io.EOF is a clean
// end of stream, not an error.
func (r *Reader) Err() error {
	return r.err
}

// Close releases the underlying source when it implements io.Closer. It is
// idempotent; reads after Close return errors.ErrReaderClosed.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.buf = nil

	if closer, ok := r.src.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return ferrors.Wrap(err, "stream.Reader", "Close", "close source")
		}
	}
	return nil
}
