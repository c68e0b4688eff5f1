package streams

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	iface "csvstream/pkg/api/streams"
)

// FileSource reads chunks from a file opened by OpenFile.
// The caller owns it and must Close it on every exit path.
type FileSource struct {
	path   string
	file   *os.File
	source *readerSource
	once   sync.Once
	err    error
}

var _ iface.ChunkSource = (*FileSource)(nil)

// OpenFile opens path for chunked reading. Failing to open the file returns
// an error wrapping ErrSourceUnavailable.
func OpenFile(path string, opts ...SourceOption) (*FileSource, error) {
	cfg, err := newSourceConfig(opts)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return &FileSource{
		path:   path,
		file:   file,
		source: newReaderSource(file, cfg),
	}, nil
}

// Path returns the path the source was opened with.
func (f *FileSource) Path() string {
	return f.path
}

// NextChunk implements ChunkSource.
func (f *FileSource) NextChunk(ctx context.Context) ([]byte, error) {
	return f.source.NextChunk(ctx)
}

// Close releases the file. Calling it more than once is safe.
func (f *FileSource) Close() error {
	f.once.Do(func() {
		f.err = f.file.Close()
		if f.err != nil {
			slog.Warn("Failed to close source file", slog.String("path", f.path), slog.Any("error", f.err))
		}
	})
	return f.err
}
