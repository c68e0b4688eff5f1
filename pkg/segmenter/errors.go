package segmenter

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEncoding is returned when a line holds bytes that are not valid UTF-8.
	ErrInvalidEncoding = errors.New("line is not valid UTF-8")
	// ErrLineTooLong is returned when an unfinished line outgrows the configured limit.
	ErrLineTooLong = errors.New("line exceeds maximum size")

	errNilSource           = errors.New("chunk source cannot be nil")
	errNegativeMaxLineSize = errors.New("maximum line size cannot be negative")
)

// DecodeError reports a line whose bytes could not be decoded as text.
type DecodeError struct {
	// Line is the 1-based number of the logical line.
	Line int
	// Offset is the byte offset of the first undecodable byte within the line.
	Offset int
	Err    error
}

// Error implements error.
func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("decode error on line %d, offset %d: %v", e.Line, e.Offset, e.Err)
}

// Unwrap returns the underlying Err.
func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
