package csvparser

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"csvstream/pkg/segmenter"
	"csvstream/pkg/streams"

	"github.com/google/go-cmp/cmp"
)

// collect drains d and returns the records and the first error other than io.EOF.
func collect(t *testing.T, d *Decoder) ([]Record, error) {
	t.Helper()
	var records []Record
	for record, err := range d.Records(t.Context()) {
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
	return records, nil
}

func TestDecoderRecords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  []DecoderOption
		want  []Record
	}{
		{
			name:  "CRLF rows",
			input: "One,Two,Three\r\n1,2,3\r\n4,5,6",
			want: []Record{
				{"One": "1", "Two": "2", "Three": "3"},
				{"One": "4", "Two": "5", "Three": "6"},
			},
		},
		{
			name:  "Missing trailing terminator",
			input: "A,B\r\nx,y",
			want:  []Record{{"A": "x", "B": "y"}},
		},
		{
			name:  "Empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "Header only",
			input: "A,B\r\n",
			want:  nil,
		},
		{
			name:  "Blank lines skipped",
			input: "\r\nA,B\n\n1,2\n\r\n\n3,4\n\n",
			want:  []Record{{"A": "1", "B": "2"}, {"A": "3", "B": "4"}},
		},
		{
			name:  "Quoted fields trimmed",
			input: "\"Name\", \"City\"\n\"Ann\" , \"Oslo\"\n",
			want:  []Record{{"Name": "Ann", "City": "Oslo"}},
		},
		{
			name:  "Embedded newline",
			input: "id,note\r\n1,\"first\nsecond\"\r\n2,plain\r\n",
			want: []Record{
				{"id": "1", "note": "first\nsecond"},
				{"id": "2", "note": "plain"},
			},
		},
		{
			name:  "Short row truncates",
			input: "a,b,c\n1,2\n",
			want:  []Record{{"a": "1", "b": "2"}},
		},
		{
			name:  "Long row truncates",
			input: "a,b\n1,2,3,4\n",
			want:  []Record{{"a": "1", "b": "2"}},
		},
		{
			name:  "Duplicate headers overwrite in order",
			input: "a,a,b\n1,2,3\n",
			want:  []Record{{"a": "2", "b": "3"}},
		},
		{
			name:  "Comma in quotes splits by default",
			input: "name,desc\n\"x\",\"a,b\"\n",
			want:  []Record{{"name": "x", "desc": "a"}},
		},
		{
			name:  "Comma in quotes kept when quote aware",
			input: "name,desc\n\"x\",\"a,b\"\n",
			opts:  []DecoderOption{WithQuoteAwareFields()},
			want:  []Record{{"name": "x", "desc": "a,b"}},
		},
		{
			name:  "Small chunks",
			input: "One,Two,Three\r\n1,\"2\r\n2\",3\r\n4,5,6",
			opts:  []DecoderOption{WithChunkSize(1)},
			want: []Record{
				{"One": "1", "Two": "2\r\n2", "Three": "3"},
				{"One": "4", "Two": "5", "Three": "6"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewBytesDecoder([]byte(tt.input), tt.opts...)
			if err != nil {
				t.Fatal(err)
			}
			got, err := collect(t, d)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("records mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecoderHeader(t *testing.T) {
	d, err := NewReaderDecoder(strings.NewReader(" \"Date\" ,Street Name,Price\n1,2,3\n"))
	if err != nil {
		t.Fatal(err)
	}
	header, err := d.Header(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Date", "Street Name", "Price"}
	if diff := cmp.Diff(want, header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	// the returned header is a copy
	header[0] = "changed"
	record, err := d.ReadRecord(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if record["Date"] != "1" {
		t.Errorf("record = %v, want Date=1", record)
	}
	if _, err := d.ReadRecord(t.Context()); err != io.EOF {
		t.Errorf("ReadRecord() error = %v, want io.EOF", err)
	}

	// the header outlives the stream
	if header, err := d.Header(t.Context()); err != nil || header[0] != "Date" {
		t.Errorf("Header() after EOF = %v, %v", header, err)
	}
}

func TestDecoderEmptyInput(t *testing.T) {
	d, err := NewBytesDecoder(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Header(t.Context()); err != io.EOF {
		t.Errorf("Header() error = %v, want io.EOF", err)
	}
	for range 2 {
		if record, err := d.ReadRecord(t.Context()); err != io.EOF || record != nil {
			t.Errorf("ReadRecord() = %v, %v, want nil, io.EOF", record, err)
		}
	}
}

func TestDecoderStrictFieldCount(t *testing.T) {
	d, err := NewBytesDecoder([]byte("a,b\n1,2\n3\n4,5\n"), WithStrictFieldCount())
	if err != nil {
		t.Fatal(err)
	}

	var records []Record
	var errs []error
	for record, err := range d.Records(t.Context()) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		records = append(records, record)
	}

	want := []Record{{"a": "1", "b": "2"}, {"a": "4", "b": "5"}}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	var parseErr *ParseError
	if !errors.As(errs[0], &parseErr) {
		t.Fatalf("error = %v, want *ParseError", errs[0])
	}
	if !errors.Is(errs[0], ErrFieldCount) {
		t.Errorf("error = %v, want it to wrap ErrFieldCount", errs[0])
	}
	if parseErr.Line != 3 {
		t.Errorf("ParseError.Line = %d, want 3", parseErr.Line)
	}
}

func TestDecoderInvalidEncodingIsTerminal(t *testing.T) {
	d, err := NewBytesDecoder([]byte("a\n1\n\xff\n2\n"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := collect(t, d)
	if !errors.Is(err, segmenter.ErrInvalidEncoding) {
		t.Fatalf("error = %v, want %v", err, segmenter.ErrInvalidEncoding)
	}
	if diff := cmp.Diff([]Record{{"a": "1"}}, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	for range 2 {
		if _, again := d.ReadRecord(t.Context()); again != err {
			t.Errorf("ReadRecord() after failure = %v, want %v", again, err)
		}
	}
}

func TestDecoderInvalidHeader(t *testing.T) {
	d, err := NewBytesDecoder([]byte("\xfe\xff\n1\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Header(t.Context()); !errors.Is(err, segmenter.ErrInvalidEncoding) {
		t.Errorf("Header() error = %v, want %v", err, segmenter.ErrInvalidEncoding)
	}
	if _, err := d.ReadRecord(t.Context()); !errors.Is(err, segmenter.ErrInvalidEncoding) {
		t.Errorf("ReadRecord() error = %v, want %v", err, segmenter.ErrInvalidEncoding)
	}
}

func TestDecoderSinglePass(t *testing.T) {
	d, err := NewBytesDecoder([]byte("n\n1\n2\n3\n"))
	if err != nil {
		t.Fatal(err)
	}
	for record, err := range d.Records(t.Context()) {
		if err != nil {
			t.Fatal(err)
		}
		if record["n"] != "1" {
			t.Fatalf("first record = %v", record)
		}
		break
	}

	// a second iteration resumes where the first one stopped
	got, err := collect(t, d)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Record{{"n": "2"}, {"n": "3"}}, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	if got, _ := collect(t, d); len(got) != 0 {
		t.Errorf("exhausted decoder yielded %v", got)
	}
}

func TestDecoderCancelledContext(t *testing.T) {
	d, err := NewBytesDecoder([]byte("n\n1\n"))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.ReadRecord(ctx); err != context.Canceled {
		t.Fatalf("ReadRecord() error = %v, want context.Canceled", err)
	}
	record, err := d.ReadRecord(t.Context())
	if err != nil || record["n"] != "1" {
		t.Errorf("ReadRecord() = %v, %v, want n=1", record, err)
	}
}

// countingSource counts the chunks requested from it.
type countingSource struct {
	data  []byte
	calls int
}

func (c *countingSource) NextChunk(_ context.Context) ([]byte, error) {
	c.calls++
	if len(c.data) == 0 {
		return nil, io.EOF
	}
	chunk := c.data
	c.data = nil
	return chunk, nil
}

func TestDecoderHeaderCancelledContext(t *testing.T) {
	src := &countingSource{data: []byte("k,v\n1,2\n")}
	d, err := NewDecoder(src)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.Header(ctx); err != context.Canceled {
		t.Fatalf("Header() error = %v, want context.Canceled", err)
	}
	if src.calls != 0 {
		t.Errorf("source pulled %d times under a cancelled context", src.calls)
	}

	header, err := d.Header(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"k", "v"}, header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	if err := os.WriteFile(path, []byte("Street Name,Price\r\nMain St,10\r\nOak Ave,20\r\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := OpenFile(path, WithChunkSize(4))
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	got, err := collect(t, d)
	if err != nil {
		t.Fatal(err)
	}
	want := []Record{
		{"Street Name": "Main St", "Price": "10"},
		{"Street Name": "Oak Ave", "Price": "20"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	if err := d.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestOpenFileUnavailable(t *testing.T) {
	d, err := OpenFile(filepath.Join(t.TempDir(), "missing.csv"))
	if d != nil {
		t.Error("OpenFile() returned a decoder for a missing file")
	}
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("OpenFile() error = %v, want %v", err, ErrSourceUnavailable)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("OpenFile() error = %v, want it to wrap fs.ErrNotExist", err)
	}
}

func TestNewDecoder(t *testing.T) {
	if _, err := NewDecoder(nil); !errors.Is(err, errNilChunkSource) {
		t.Errorf("NewDecoder(nil) error = %v, want %v", err, errNilChunkSource)
	}
	if _, err := NewBytesDecoder(nil, WithChunkSize(-1)); !errors.Is(err, errNegativeChunkSize) {
		t.Errorf("NewBytesDecoder() error = %v, want %v", err, errNegativeChunkSize)
	}
	if _, err := NewBytesDecoder(nil, WithMaxLineSize(-1)); !errors.Is(err, errNegativeMaxLineSize) {
		t.Errorf("NewBytesDecoder() error = %v, want %v", err, errNegativeMaxLineSize)
	}
	if _, err := NewReaderDecoder(nil); err == nil {
		t.Error("NewReaderDecoder(nil) returned no error")
	}

	src, err := streams.NewBytesSource([]byte("k\nv\n"))
	if err != nil {
		t.Fatal(err)
	}
	d, err := NewDecoder(src)
	if err != nil {
		t.Fatal(err)
	}
	got, err := collect(t, d)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Record{{"k": "v"}}, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	if err := d.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestDecoderMaxLineSize(t *testing.T) {
	d, err := NewBytesDecoder([]byte("a\n"+strings.Repeat("x", 64)+"\n"), WithMaxLineSize(16))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := collect(t, d); !errors.Is(err, segmenter.ErrLineTooLong) {
		t.Errorf("error = %v, want %v", err, segmenter.ErrLineTooLong)
	}
}
