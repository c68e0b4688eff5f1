package aggregator

import (
	"context"

	attr "csvstream/pkg/api/attribute"
	apiGroupify "csvstream/pkg/api/groupify"
)

// AverageByGroup represents aggregated values for a group
type AverageByGroup interface {
	GroupKey() attr.BaseAttribute
	AverageValue() attr.NumericAttribute
}

// AverageAggregator averages grouped values per group.
type AverageAggregator interface {
	Process(ctx context.Context, items <-chan apiGroupify.GroupItem) ([]AverageByGroup, error)
}
