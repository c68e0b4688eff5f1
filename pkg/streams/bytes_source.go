package streams

import (
	"context"
	"io"

	iface "csvstream/pkg/api/streams"
)

type bytesSource struct {
	data      []byte
	chunkSize int
}

var _ iface.ChunkSource = (*bytesSource)(nil)

// NewBytesSource creates a chunk source over an in-memory block.
// The block is sliced, not copied, so it must not change while in use.
func NewBytesSource(data []byte, opts ...SourceOption) (iface.ChunkSource, error) {
	cfg, err := newSourceConfig(opts)
	if err != nil {
		return nil, err
	}
	return &bytesSource{data: data, chunkSize: cfg.chunkSize}, nil
}

// NextChunk implements ChunkSource.
func (b *bytesSource) NextChunk(ctx context.Context) ([]byte, error) {
	if b == nil || len(b.data) == 0 {
		return nil, io.EOF
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	n := min(b.chunkSize, len(b.data))
	chunk := b.data[:n:n]
	b.data = b.data[n:]
	return chunk, nil
}
