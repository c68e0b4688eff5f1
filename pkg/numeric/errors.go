package numeric

import "errors"

var (
	// ErrInvalidType is returned when an invalid type conversion is attempted
	ErrInvalidType = errors.New("invalid type conversion")
	// ErrEmptyNumber is returned when nothing numeric is left after cleanup
	ErrEmptyNumber = errors.New("empty numeric value")
)
