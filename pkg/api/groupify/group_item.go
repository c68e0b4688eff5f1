package groupify

import (
	"context"

	attr "csvstream/pkg/api/attribute"
)

// GroupItem is one numeric value tagged with the group it belongs to.
type GroupItem interface {
	Key() GroupKey
	Value() attr.NumericAttribute
}

// ValueGrouper extracts grouped values from a record source
type ValueGrouper interface {
	// GroupValues sends every grouped value to dst and closes dst when the
	// source is exhausted or an error occurs.
	GroupValues(ctx context.Context, dst chan<- GroupItem) error
}
