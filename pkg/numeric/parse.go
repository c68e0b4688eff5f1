package numeric

import (
	"fmt"
	"strconv"
	"strings"

	attr "csvstream/pkg/api/attribute"
)

// fieldNoise removes what may decorate a number in a CSV field: currency
// symbols, thousands separators and spaces.
var fieldNoise = strings.NewReplacer(
	"$", "",
	"€", "",
	"£", "",
	",", "",
	" ", "",
)

func clean(field string) (string, error) {
	field = strings.TrimSpace(fieldNoise.Replace(field))
	if field == "" {
		return "", ErrEmptyNumber
	}
	return field, nil
}

// ParseDecimal parses a field such as "€ 1,000.50" as an exact Decimal.
func ParseDecimal(field string) (*Decimal, error) {
	s, err := clean(field)
	if err != nil {
		return nil, err
	}
	v := &Decimal{}
	if _, _, err := v.value.SetString(s); err != nil {
		return nil, fmt.Errorf("parsing decimal %q: %w", field, err)
	}
	return v, nil
}

// ParseFloat parses a field such as "$100.50" as a Float.
func ParseFloat(field string) (Float, error) {
	s, err := clean(field)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing float %q: %w", field, err)
	}
	return Float(v), nil
}

// Parse parses field as a value of type typ.
func Parse(typ attr.NumericType, field string) (attr.NumericAttribute, error) {
	switch typ {
	case attr.Decimal:
		v, err := ParseDecimal(field)
		if err != nil {
			return nil, err
		}
		return v, nil
	case attr.Float:
		v, err := ParseFloat(field)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: cannot parse %s", ErrInvalidType, typ)
	}
}
