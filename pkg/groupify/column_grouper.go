package groupify

import (
	"context"
	"io"
	"log/slog"
	"strings"

	attr "csvstream/pkg/api/attribute"
	apiGroupify "csvstream/pkg/api/groupify"
	apiStreams "csvstream/pkg/api/streams"
	"csvstream/pkg/numeric"
)

var (
	_ apiGroupify.ValueGrouper = (*columnGrouper)(nil)
	_ apiGroupify.GroupItem    = (*groupedValue)(nil)
)

// groupedValue is a numeric value tagged with its group key
type groupedValue struct {
	key   apiGroupify.GroupKey
	value attr.NumericAttribute
}

// Key implements GroupItem.
func (g groupedValue) Key() apiGroupify.GroupKey {
	return g.key
}

// Value implements GroupItem.
func (g groupedValue) Value() attr.NumericAttribute {
	return g.value
}

// columnGrouper reads records and pairs the group column with the parsed
// value column. It implements the ValueGrouper interface.
type columnGrouper struct {
	stream   apiStreams.RecordStream
	groupCol string
	valueCol string
	numType  attr.NumericType
}

// NewColumnGrouper creates a grouper over stream. WithColNames is required;
// the names are resolved against the stream header, which is read here.
func NewColumnGrouper(ctx context.Context, stream apiStreams.RecordStream, opts ...Option) (apiGroupify.ValueGrouper, error) {
	if stream == nil {
		return nil, errNilRecordStream
	}
	g := &columnGrouper{stream: stream, numType: attr.Decimal}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	if g.groupCol == "" || g.valueCol == "" {
		return nil, errColumnsNotConfigured
	}

	header, err := stream.Header(ctx)
	if err == io.EOF || (err == nil && len(header) == 0) {
		return nil, errNoHeader
	}
	if err != nil {
		return nil, err
	}
	groupCol, valueCol := "", ""
	for _, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), g.groupCol) {
			groupCol = col
		}
		if strings.EqualFold(strings.TrimSpace(col), g.valueCol) {
			valueCol = col
		}
	}
	if groupCol == "" {
		return nil, errGroupColumnMissing
	}
	if valueCol == "" {
		return nil, errValueColumnMissing
	}
	g.groupCol, g.valueCol = groupCol, valueCol
	return g, nil
}

// GroupValues implements ValueGrouper. Rows lacking either column or holding
// an unparsable value are skipped.
func (g *columnGrouper) GroupValues(ctx context.Context, dst chan<- apiGroupify.GroupItem) error {
	defer close(dst)
	if g == nil || g.stream == nil {
		return errNilGrouperOrStream
	}

	for {
		record, err := g.stream.ReadRecord(ctx)
		if err == io.EOF {
			slog.InfoContext(ctx, "End of record stream")
			return nil
		}
		if err != nil {
			slog.ErrorContext(ctx, "Error reading record", "error", err)
			return err
		}

		key, okKey := record[g.groupCol]
		raw, okValue := record[g.valueCol]
		if !okKey || !okValue {
			slog.DebugContext(ctx, "Record lacks grouping columns", slog.Int("fields", len(record)))
			continue
		}
		value, err := numeric.Parse(g.numType, raw)
		if err != nil {
			slog.WarnContext(ctx, "Failed to parse value", slog.String("value", raw), slog.Any("error", err))
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case dst <- groupedValue{key: apiGroupify.ParseGroupKey(key), value: value}:
		}
	}
}
