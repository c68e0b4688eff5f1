package streams

import (
	"context"
	"io"

	iface "csvstream/pkg/api/streams"
)

// maxEmptyReads bounds consecutive (0, nil) reads before giving up,
// the same limit bufio uses.
const maxEmptyReads = 100

type readerSource struct {
	reader io.Reader
	buf    []byte
	err    error
}

var _ iface.ChunkSource = (*readerSource)(nil)

// NewReaderSource creates a chunk source reading fixed size chunks from reader.
func NewReaderSource(reader io.Reader, opts ...SourceOption) (iface.ChunkSource, error) {
	if reader == nil {
		return nil, errNilReader
	}
	cfg, err := newSourceConfig(opts)
	if err != nil {
		return nil, err
	}
	return newReaderSource(reader, cfg), nil
}

func newReaderSource(reader io.Reader, cfg sourceConfig) *readerSource {
	return &readerSource{
		reader: reader,
		buf:    make([]byte, cfg.chunkSize),
	}
}

// NextChunk implements ChunkSource.
func (r *readerSource) NextChunk(ctx context.Context) ([]byte, error) {
	if r == nil || r.reader == nil {
		return nil, io.EOF
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	// Errors returned together with data are reported on the next call.
	if r.err != nil {
		return nil, r.err
	}
	for range maxEmptyReads {
		n, err := r.reader.Read(r.buf)
		if err != nil {
			r.err = err
		}
		if n > 0 {
			return r.buf[:n], nil
		}
		if err != nil {
			return nil, err
		}
	}
	r.err = io.ErrNoProgress
	return nil, r.err
}
