package streams

// DefaultChunkSize is the number of bytes requested from the underlying
// input per chunk.
const DefaultChunkSize = 1 << 10

// SourceOption configures a chunk source.
type SourceOption func(*sourceConfig) error

type sourceConfig struct {
	chunkSize int
}

func newSourceConfig(opts []SourceOption) (sourceConfig, error) {
	cfg := sourceConfig{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return sourceConfig{}, err
		}
	}
	return cfg, nil
}

// WithChunkSize sets the maximum size of a single chunk.
// Zero keeps the default.
func WithChunkSize(n int) SourceOption {
	return func(c *sourceConfig) error {
		if n < 0 {
			return errInvalidChunkSize
		}
		if n > 0 {
			c.chunkSize = n
		}
		return nil
	}
}
