package csvparser

import (
	"errors"

	"csvstream/pkg/segmenter"
	"csvstream/pkg/streams"
)

var (
	errNegativeChunkSize   = errors.New("chunk size cannot be negative")
	errNegativeMaxLineSize = errors.New("maximum line size cannot be negative")
)

// DecoderOption configures a Decoder
type DecoderOption func(*decoderConfig) error

type decoderConfig struct {
	chunkSize   int
	maxLineSize int
	split       func(string) []string
	strict      bool
}

func newDecoderConfig(opts []DecoderOption) (decoderConfig, error) {
	cfg := decoderConfig{
		chunkSize: streams.DefaultChunkSize,
		split:     SplitFields,
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return decoderConfig{}, err
		}
	}
	return cfg, nil
}

func (c decoderConfig) sourceOptions() []streams.SourceOption {
	return []streams.SourceOption{streams.WithChunkSize(c.chunkSize)}
}

func (c decoderConfig) segmenterOptions() []segmenter.Option {
	return []segmenter.Option{segmenter.WithMaxLineSize(c.maxLineSize)}
}

// WithChunkSize sets how many bytes are read from the input at a time.
// It has no effect on NewDecoder, whose source is already built.
func WithChunkSize(n int) DecoderOption {
	return func(c *decoderConfig) error {
		if n < 0 {
			return errNegativeChunkSize
		}
		if n > 0 {
			c.chunkSize = n
		}
		return nil
	}
}

// WithMaxLineSize bounds the size of one logical line in bytes (0 = unlimited)
func WithMaxLineSize(n int) DecoderOption {
	return func(c *decoderConfig) error {
		if n < 0 {
			return errNegativeMaxLineSize
		}
		c.maxLineSize = n
		return nil
	}
}

// WithQuoteAwareFields keeps commas inside double quotes within their field.
func WithQuoteAwareFields() DecoderOption {
	return func(c *decoderConfig) error {
		c.split = SplitQuotedFields
		return nil
	}
}

// WithStrictFieldCount reports rows whose width differs from the header
// instead of truncating them.
func WithStrictFieldCount() DecoderOption {
	return func(c *decoderConfig) error {
		c.strict = true
		return nil
	}
}
