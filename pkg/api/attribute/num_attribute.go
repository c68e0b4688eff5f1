package attribute

import "fmt"

// BaseAttribute is any value that can be rendered as a string.
type BaseAttribute interface {
	fmt.Stringer
}

// NumericType represents the type of numeric value
type NumericType int

const (
	// Nothing marks the absence of a value
	Nothing NumericType = iota
	// Float represents a float64 value
	Float
	// Decimal represents an arbitrary decimal value with fixed precision
	Decimal
)

// String implements fmt.Stringer.
func (t NumericType) String() string {
	switch t {
	case Float:
		return "float"
	case Decimal:
		return "decimal"
	default:
		return "nothing"
	}
}

type NumericAttribute interface {
	BaseAttribute
	// GetNumericType returns the type of numeric value
	GetNumericType() NumericType
	// EqualTo checks if two numeric attributes are equal
	EqualTo(other NumericAttribute) bool
}
