package streams

import "errors"

var (
	// ErrSourceUnavailable is returned when the named input cannot be opened.
	ErrSourceUnavailable = errors.New("source unavailable")

	errNilReader        = errors.New("reader cannot be nil")
	errInvalidChunkSize = errors.New("chunk size must be positive")
)
