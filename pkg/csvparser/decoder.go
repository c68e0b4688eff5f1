// Package csvparser decodes CSV input into records keyed by the column
// headers found on the first line.
package csvparser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"slices"

	iface "csvstream/pkg/api/streams"
	"csvstream/pkg/segmenter"
	"csvstream/pkg/streams"
)

// Record maps a column header to the field value of one row.
type Record = map[string]string

type decoderState int

const (
	stateUninitialized decoderState = iota
	stateHeaderParsed
	stateExhausted
)

// Decoder is a single forward pass over a CSV input. It is not safe for
// concurrent use; decoding the input again needs a new Decoder.
type Decoder struct {
	lines  *segmenter.LineSegmenter
	closer io.Closer
	split  func(string) []string
	strict bool

	state  decoderState
	header []string
	count  int
	err    error
}

var _ iface.RecordStream = (*Decoder)(nil)

// NewDecoder creates a Decoder pulling bytes from source.
func NewDecoder(source iface.ChunkSource, opts ...DecoderOption) (*Decoder, error) {
	if source == nil {
		return nil, errNilChunkSource
	}
	cfg, err := newDecoderConfig(opts)
	if err != nil {
		return nil, err
	}
	return newDecoder(source, cfg)
}

// NewReaderDecoder creates a Decoder reading from reader. The caller keeps
// ownership of reader.
func NewReaderDecoder(reader io.Reader, opts ...DecoderOption) (*Decoder, error) {
	cfg, err := newDecoderConfig(opts)
	if err != nil {
		return nil, err
	}
	source, err := streams.NewReaderSource(reader, cfg.sourceOptions()...)
	if err != nil {
		return nil, err
	}
	return newDecoder(source, cfg)
}

// NewBytesDecoder creates a Decoder over an in-memory CSV document.
func NewBytesDecoder(data []byte, opts ...DecoderOption) (*Decoder, error) {
	cfg, err := newDecoderConfig(opts)
	if err != nil {
		return nil, err
	}
	source, err := streams.NewBytesSource(data, cfg.sourceOptions()...)
	if err != nil {
		return nil, err
	}
	return newDecoder(source, cfg)
}

// OpenFile opens the CSV file at path. The error wraps ErrSourceUnavailable
// when the file cannot be opened. The Decoder must be closed.
func OpenFile(path string, opts ...DecoderOption) (*Decoder, error) {
	cfg, err := newDecoderConfig(opts)
	if err != nil {
		return nil, err
	}
	file, err := streams.OpenFile(path, cfg.sourceOptions()...)
	if err != nil {
		return nil, err
	}
	d, err := newDecoder(file, cfg)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	d.closer = file
	return d, nil
}

func newDecoder(source iface.ChunkSource, cfg decoderConfig) (*Decoder, error) {
	lines, err := segmenter.New(source, cfg.segmenterOptions()...)
	if err != nil {
		return nil, err
	}
	return &Decoder{
		lines:  lines,
		split:  cfg.split,
		strict: cfg.strict,
	}, nil
}

// Header implements RecordStream. The header line is read on first use.
func (d *Decoder) Header(ctx context.Context) ([]string, error) {
	if d == nil || d.lines == nil {
		return nil, io.EOF
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	if d.state == stateUninitialized {
		if err := d.readHeader(ctx); err != nil {
			return nil, err
		}
	}
	if d.header == nil {
		return nil, d.exhaustedErr()
	}
	return slices.Clone(d.header), nil
}

// ReadRecord implements RecordStream. It returns io.EOF once the input is
// exhausted. Decode and read failures end the stream and are returned again
// by every later call.
func (d *Decoder) ReadRecord(ctx context.Context) (Record, error) {
	if d == nil || d.lines == nil {
		return nil, io.EOF
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	switch d.state {
	case stateExhausted:
		return nil, d.exhaustedErr()
	case stateUninitialized:
		if err := d.readHeader(ctx); err != nil {
			return nil, err
		}
	}

	line, err := d.lines.NextLine(ctx)
	if err == io.EOF {
		d.state = stateExhausted
		slog.InfoContext(ctx, "End of CSV stream", slog.Int("records", d.count))
		return nil, io.EOF
	}
	if err != nil {
		return nil, d.terminate(ctx, err)
	}

	fields := d.split(line)
	if len(fields) != len(d.header) {
		if d.strict {
			return nil, &ParseError{
				Line: d.lines.Line(),
				Err:  fmt.Errorf("%w: got %d, want %d", ErrFieldCount, len(fields), len(d.header)),
			}
		}
		slog.WarnContext(ctx, "Row width differs from header, truncating",
			slog.Int("line", d.lines.Line()), slog.Int("fields", len(fields)), slog.Int("columns", len(d.header)))
	}

	n := min(len(fields), len(d.header))
	record := make(Record, n)
	for i := range n {
		record[d.header[i]] = fields[i]
	}
	d.count++
	return record, nil
}

// Records returns the remaining records as a single-pass sequence. The
// sequence ends at the end of input or after yielding an error that ends the
// stream.
func (d *Decoder) Records(ctx context.Context) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for {
			record, err := d.ReadRecord(ctx)
			if err == io.EOF {
				return
			}
			if !yield(record, err) {
				return
			}
			if err != nil && !errors.Is(err, ErrFieldCount) {
				return
			}
		}
	}
}

// Close releases the file opened by OpenFile. Decoders built on a caller
// supplied source or reader leave it untouched.
func (d *Decoder) Close() error {
	if d == nil || d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

func (d *Decoder) readHeader(ctx context.Context) error {
	line, err := d.lines.NextLine(ctx)
	if err == io.EOF {
		d.state = stateExhausted
		slog.InfoContext(ctx, "CSV stream has no header")
		return io.EOF
	}
	if err != nil {
		return d.terminate(ctx, err)
	}
	d.header = d.split(line)
	d.state = stateHeaderParsed
	slog.DebugContext(ctx, "Parsed CSV header", slog.Any("columns", d.header))
	return nil
}

// terminate ends the stream with err unless err comes from the context.
func (d *Decoder) terminate(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	slog.ErrorContext(ctx, "CSV stream failed", slog.Int("records", d.count), slog.Any("error", err))
	d.state = stateExhausted
	d.err = err
	return err
}

func (d *Decoder) exhaustedErr() error {
	if d.err != nil {
		return d.err
	}
	return io.EOF
}
