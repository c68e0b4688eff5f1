// Package numeric holds the numeric values parsed out of CSV fields.
package numeric

import (
	"math"
	"strconv"

	attr "csvstream/pkg/api/attribute"

	apd "github.com/cockroachdb/apd/v3"
)

// floatTolerance is the largest difference at which two Float values are equal.
const floatTolerance = 1e-6

var (
	_ attr.NumericAttribute = (*Decimal)(nil)
	_ attr.NumericAttribute = Float(0)
	_ attr.NumericAttribute = none{}

	// None is the value of a group that received no input.
	None attr.NumericAttribute = none{}
)

// Decimal is an exact decimal value.
type Decimal struct {
	value apd.Decimal
}

// NewDecimal copies d into a new Decimal.
func NewDecimal(d *apd.Decimal) *Decimal {
	v := &Decimal{}
	v.value.Set(d)
	return v
}

// Decimal returns the underlying apd value. Callers must not modify it.
func (d *Decimal) Decimal() *apd.Decimal {
	return &d.value
}

func (d *Decimal) GetNumericType() attr.NumericType { return attr.Decimal }
func (d *Decimal) String() string                   { return d.value.String() }

// EqualTo reports whether other is a Decimal of the same numeric value,
// ignoring trailing zeros.
func (d *Decimal) EqualTo(other attr.NumericAttribute) bool {
	o, ok := other.(*Decimal)
	return ok && o != nil && d.value.Cmp(&o.value) == 0
}

// Float is an approximate binary value.
type Float float64

func (f Float) GetNumericType() attr.NumericType { return attr.Float }
func (f Float) String() string                   { return strconv.FormatFloat(float64(f), 'f', -1, 64) }

// EqualTo reports whether other is a Float within floatTolerance of f.
func (f Float) EqualTo(other attr.NumericAttribute) bool {
	o, ok := other.(Float)
	return ok && math.Abs(float64(f-o)) <= floatTolerance
}

type none struct{}

func (none) GetNumericType() attr.NumericType { return attr.Nothing }
func (none) String() string                   { return "" }

func (none) EqualTo(other attr.NumericAttribute) bool {
	return other != nil && other.GetNumericType() == attr.Nothing
}

// AsDecimal returns the apd value of v, or ErrInvalidType if v is not a Decimal.
func AsDecimal(v attr.NumericAttribute) (*apd.Decimal, error) {
	d, ok := v.(*Decimal)
	if !ok || d == nil {
		return nil, ErrInvalidType
	}
	return &d.value, nil
}

// AsFloat returns the float64 value of v, or ErrInvalidType if v is not a Float.
func AsFloat(v attr.NumericAttribute) (float64, error) {
	f, ok := v.(Float)
	if !ok {
		return 0, ErrInvalidType
	}
	return float64(f), nil
}
