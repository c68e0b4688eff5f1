// Package segmenter splits a stream of byte chunks into logical CSV lines.
//
// A line ends at a line feed, or at a carriage return immediately followed by
// a line feed, provided an even number of double quotes precede it in the
// buffered bytes. Terminators inside quotes stay part of the line, so a quoted
// field may span several physical lines. A bare carriage return never ends a
// line.
package segmenter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	iface "csvstream/pkg/api/streams"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

const (
	lineFeed       = '\n'
	carriageReturn = '\r'
	doubleQuote    = '"'
)

// LineSegmenter accumulates chunks from a ChunkSource and emits one logical
// line per call. It is not safe for concurrent use.
type LineSegmenter struct {
	source iface.ChunkSource
	buf    []byte

	// scanned bytes of buf hold no usable terminator; quotes counts the
	// double quotes among them.
	scanned int
	quotes  int

	exhausted   bool
	maxLineSize int
	line        int
	err         error
}

var _ iface.LineSource = (*LineSegmenter)(nil)

// Option configures a LineSegmenter.
type Option func(*LineSegmenter) error

// WithMaxLineSize limits the number of bytes a single logical line may span.
// Zero means unlimited.
func WithMaxLineSize(n int) Option {
	return func(s *LineSegmenter) error {
		if n < 0 {
			return errNegativeMaxLineSize
		}
		s.maxLineSize = n
		return nil
	}
}

// New creates a LineSegmenter reading from source.
func New(source iface.ChunkSource, opts ...Option) (*LineSegmenter, error) {
	if source == nil {
		return nil, errNilSource
	}
	s := &LineSegmenter{source: source}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Line returns the number of lines emitted so far.
func (s *LineSegmenter) Line() int {
	return s.line
}

// NextLine implements LineSource.
func (s *LineSegmenter) NextLine(ctx context.Context) (string, error) {
	if s == nil || s.source == nil {
		return "", io.EOF
	}
	if s.err != nil {
		return "", s.err
	}

	for {
		if s.scanned == 0 {
			s.trimLeadingTerminators()
		}
		if end, width, ok := s.scan(); ok {
			return s.emit(ctx, end, end+width)
		}
		if s.exhausted {
			if len(s.buf) == 0 {
				return "", io.EOF
			}
			// Input without a trailing terminator: the rest is the last line.
			return s.emit(ctx, len(s.buf), len(s.buf))
		}
		if s.maxLineSize > 0 && len(s.buf) > s.maxLineSize {
			return "", s.fail(ctx, ErrLineTooLong)
		}
		if err := s.fill(ctx); err != nil {
			return "", err
		}
	}
}

// trimLeadingTerminators drops CR and LF bytes at the front of the buffer.
func (s *LineSegmenter) trimLeadingTerminators() {
	i := 0
	for i < len(s.buf) && (s.buf[i] == lineFeed || s.buf[i] == carriageReturn) {
		i++
	}
	if i > 0 {
		s.buf = s.buf[:copy(s.buf, s.buf[i:])]
	}
}

// scan resumes looking for the first unquoted terminator. It returns the
// terminator position and width. A carriage return in the last buffered byte
// is left unscanned until the next byte is known.
func (s *LineSegmenter) scan() (end, width int, ok bool) {
	for i := s.scanned; i < len(s.buf); i++ {
		switch s.buf[i] {
		case doubleQuote:
			s.quotes++
		case lineFeed:
			if s.quotes%2 == 0 {
				return i, 1, true
			}
		case carriageReturn:
			if s.quotes%2 != 0 {
				continue
			}
			if i+1 == len(s.buf) {
				s.scanned = i
				return 0, 0, false
			}
			if s.buf[i+1] == lineFeed {
				return i, 2, true
			}
		}
	}
	s.scanned = len(s.buf)
	return 0, 0, false
}

// fill appends the next chunk to the buffer.
func (s *LineSegmenter) fill(ctx context.Context) error {
	chunk, err := s.source.NextChunk(ctx)
	if err == io.EOF {
		slog.DebugContext(ctx, "Chunk source exhausted", slog.Int("buffered", len(s.buf)))
		s.exhausted = true
		return nil
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return s.fail(ctx, fmt.Errorf("reading chunk: %w", err))
	}
	s.buf = append(s.buf, chunk...)
	return nil
}

// emit decodes buf[:end] as the next line and drops buf[:consumed].
func (s *LineSegmenter) emit(ctx context.Context, end, consumed int) (string, error) {
	if s.maxLineSize > 0 && end > s.maxLineSize {
		return "", s.fail(ctx, ErrLineTooLong)
	}
	text, n, err := transform.String(encoding.UTF8Validator, string(s.buf[:end]))
	if err != nil {
		return "", s.fail(ctx, &DecodeError{
			Line:   s.line + 1,
			Offset: n,
			Err:    fmt.Errorf("%w: %w", ErrInvalidEncoding, err),
		})
	}

	s.buf = s.buf[:copy(s.buf, s.buf[consumed:])]
	s.scanned = 0
	s.quotes = 0
	s.line++
	return text, nil
}

// fail makes err terminal for the segmenter.
func (s *LineSegmenter) fail(ctx context.Context, err error) error {
	slog.ErrorContext(ctx, "Line segmentation stopped", slog.Int("line", s.line+1), slog.Any("error", err))
	s.err = err
	return err
}
