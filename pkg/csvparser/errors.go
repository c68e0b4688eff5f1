package csvparser

import (
	"errors"
	"fmt"

	"csvstream/pkg/streams"
)

var (
	// ErrSourceUnavailable is returned by OpenFile when the file cannot be opened.
	ErrSourceUnavailable = streams.ErrSourceUnavailable
	// ErrFieldCount is returned in strict mode when a row and the header differ in width.
	ErrFieldCount = errors.New("wrong number of fields")

	errNilChunkSource = errors.New("chunk source cannot be nil")
)

// ParseError reports a failure tied to a logical line.
type ParseError struct {
	// Line is the 1-based logical line number, header included.
	Line int
	Err  error
}

// Error implements error.
func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("parse error on line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying Err.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
