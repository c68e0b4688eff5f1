package groupify

import (
	"strings"

	attr "csvstream/pkg/api/attribute"
)

// Option configures a column grouper
type Option func(*columnGrouper) error

// WithColNames sets the group and value columns by header name.
// Names are matched case-insensitively against the header.
func WithColNames(groupColName, valueColName string) Option {
	return func(g *columnGrouper) error {
		groupColName = strings.TrimSpace(groupColName)
		valueColName = strings.TrimSpace(valueColName)

		if groupColName == "" {
			return errGroupColumnNotSpecified
		}
		if valueColName == "" {
			return errValueColumnNotSpecified
		}
		if strings.EqualFold(groupColName, valueColName) {
			return errColumnNamesEqual
		}
		g.groupCol = groupColName
		g.valueCol = valueColName
		return nil
	}
}

// WithDecimals forces decimal parsing (default)
func WithDecimals() Option {
	return func(g *columnGrouper) error {
		g.numType = attr.Decimal
		return nil
	}
}

// WithFloats forces float64 parsing
func WithFloats() Option {
	return func(g *columnGrouper) error {
		g.numType = attr.Float
		return nil
	}
}
