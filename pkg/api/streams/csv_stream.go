package streams

import "context"

// ChunkSource supplies successive chunks of raw bytes.
type ChunkSource interface {
	// NextChunk returns the next non-empty chunk of bytes or io.EOF once the
	// input is exhausted. After io.EOF every later call returns io.EOF again.
	// The returned slice is only valid until the next call.
	NextChunk(ctx context.Context) ([]byte, error)
}

// LineSource produces logical CSV lines, free of their line terminators.
type LineSource interface {
	// NextLine returns the next logical line or io.EOF when no line is left.
	NextLine(ctx context.Context) (string, error)
}

// RecordStream represents a stream of header-keyed CSV records.
type RecordStream interface {
	// Header returns the column headers parsed from the first line.
	// It returns io.EOF when the input holds no line at all.
	Header(ctx context.Context) ([]string, error)

	// ReadRecord reads the next record from the stream.
	// Returns io.EOF once the stream is exhausted.
	ReadRecord(ctx context.Context) (map[string]string, error)
}
