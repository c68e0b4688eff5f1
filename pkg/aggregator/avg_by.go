package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	api "csvstream/pkg/api/aggregator"
	apiAttr "csvstream/pkg/api/attribute"
	apiGroupify "csvstream/pkg/api/groupify"
	num "csvstream/pkg/numeric"

	"github.com/cockroachdb/apd/v3"
	"golang.org/x/sync/errgroup"
)

const valueQueueSize = 1000

type avgByGroup struct {
	key apiAttr.BaseAttribute
	val apiAttr.NumericAttribute
}

func (a avgByGroup) GroupKey() apiAttr.BaseAttribute        { return a.key }
func (a avgByGroup) AverageValue() apiAttr.NumericAttribute { return a.val }

var (
	_ api.AverageByGroup    = (*avgByGroup)(nil)
	_ api.AverageAggregator = (*avgBy)(nil)

	sumCtx = apd.Context{
		Precision:   100,
		MaxExponent: apd.MaxExponent,
		MinExponent: apd.MinExponent,
		Traps:       apd.DefaultTraps,
		Rounding:    apd.RoundHalfEven,
	}

	avgCtx = apd.Context{
		Precision:   50,
		MaxExponent: apd.MaxExponent,
		MinExponent: apd.MinExponent,
		Traps:       apd.DefaultTraps,
		Rounding:    apd.RoundHalfEven, // Banker's rounding for final result
	}
)

type avgBy struct{}

// NewAvgBy creates an aggregator averaging values per group key.
func NewAvgBy() api.AverageAggregator {
	return &avgBy{}
}

// average calculates the mean of the values received on in. The first value
// fixes the numeric type of the group.
func average(ctx context.Context, in <-chan apiAttr.NumericAttribute) (apiAttr.NumericAttribute, error) {
	numType := apiAttr.Nothing
	sumDec := apd.New(0, 0)
	sumFloat := float64(0)
	cnt := int64(0)

	for val := range in {
		if numType == apiAttr.Nothing {
			numType = val.GetNumericType()
		}

		switch numType {
		case apiAttr.Decimal:
			decVal, err := num.AsDecimal(val)
			if err != nil {
				return nil, fmt.Errorf("mixed numeric types in group: %w", err)
			}
			if _, err := sumCtx.Add(sumDec, sumDec, decVal); err != nil {
				slog.ErrorContext(ctx, "Error adding value to sum", "value", val.String(), "error", err)
				return nil, err
			}
		case apiAttr.Float:
			floatVal, err := num.AsFloat(val)
			if err != nil {
				return nil, fmt.Errorf("mixed numeric types in group: %w", err)
			}
			sumFloat += floatVal
		default:
			return nil, fmt.Errorf("unknown numeric type: %s", numType)
		}
		cnt++
	}

	switch numType {
	case apiAttr.Decimal:
		avg := apd.New(0, 0)
		if _, err := avgCtx.Quo(avg, sumDec, apd.New(cnt, 0)); err != nil {
			slog.ErrorContext(ctx, "Error calculating average", "error", err)
			return nil, err
		}
		if _, err := avgCtx.Quantize(avg, avg, -2); err != nil {
			slog.ErrorContext(ctx, "Error quantizing average", "error", err)
			return nil, err
		}
		return num.NewDecimal(avg), nil
	case apiAttr.Float:
		return num.Float(sumFloat / float64(cnt)), nil
	}

	// nothing to average
	return num.None, nil
}

// Process implements aggregator.AverageAggregator. A worker is started for
// every group key on first sight; results are sorted by key.
func (a *avgBy) Process(ctx context.Context, items <-chan apiGroupify.GroupItem) ([]api.AverageByGroup, error) {
	eg, egCtx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	results := make(map[apiGroupify.GroupKey]apiAttr.NumericAttribute)
	queues := make(map[apiGroupify.GroupKey]chan apiAttr.NumericAttribute)
	closeQueues := func() {
		for _, ch := range queues {
			close(ch)
		}
	}

feed:
	for {
		select {
		case <-egCtx.Done():
			break feed
		case item, ok := <-items:
			if !ok {
				break feed
			}
			key := item.Key()
			ch, found := queues[key]
			if !found {
				ch = make(chan apiAttr.NumericAttribute, valueQueueSize)
				queues[key] = ch
				eg.Go(func() error {
					avg, err := average(egCtx, ch)
					if err != nil {
						return fmt.Errorf("group %q: %w", key, err)
					}
					mu.Lock()
					results[key] = avg
					mu.Unlock()
					return nil
				})
			}
			select {
			case <-egCtx.Done():
				break feed
			case ch <- item.Value():
			}
		}
	}
	closeQueues()

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outputs := make([]api.AverageByGroup, 0, len(results))
	for key, avg := range results {
		outputs = append(outputs, avgByGroup{key: key, val: avg})
	}
	slices.SortFunc(outputs, func(x, y api.AverageByGroup) int {
		return strings.Compare(x.GroupKey().String(), y.GroupKey().String())
	})
	return outputs, nil
}
