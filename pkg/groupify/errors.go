package groupify

import "errors"

var (
	errNilRecordStream         = errors.New("record stream cannot be nil")
	errNoHeader                = errors.New("record stream has no header")
	errGroupColumnNotSpecified = errors.New("group column name not specified")
	errValueColumnNotSpecified = errors.New("value column name not specified")
	errColumnNamesEqual        = errors.New("group and value column names are equal")
	errGroupColumnMissing      = errors.New("group column not found in CSV header")
	errValueColumnMissing      = errors.New("value column not found in CSV header")
	errColumnsNotConfigured    = errors.New("group and value columns not configured")
	errNilGrouperOrStream      = errors.New("grouper or stream is nil")
)
