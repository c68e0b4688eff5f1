package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"csvstream/pkg/csvparser"
)

var (
	logPath    string
	filePath   string
	chunkSize  int
	maxLine    int
	strict     bool
	quoteAware bool
	verbose    bool
	logCfg     = slog.HandlerOptions{
		Level: slog.LevelError,
	}
)

func cmdLineParse() {
	pflag.StringVarP(&logPath, "log", "l", "", "path to log file. Default is stderr")
	pflag.StringVarP(&filePath, "file", "f", "-", "path to CSV file, '-' reads stdin")
	pflag.IntVarP(&chunkSize, "chunk-size", "c", 0, "bytes read from the input at a time")
	pflag.IntVar(&maxLine, "max-line", 0, "maximum size of one logical line in bytes, 0 is unlimited")
	pflag.BoolVarP(&strict, "strict", "s", false, "report rows whose width differs from the header")
	pflag.BoolVarP(&quoteAware, "quote-aware", "q", false, "keep commas inside double quotes within their field")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "enable verbose (debug) logging")
	pflag.Parse()
}

func decoderOptions() []csvparser.DecoderOption {
	opts := []csvparser.DecoderOption{
		csvparser.WithChunkSize(chunkSize),
		csvparser.WithMaxLineSize(maxLine),
	}
	if strict {
		opts = append(opts, csvparser.WithStrictFieldCount())
	}
	if quoteAware {
		opts = append(opts, csvparser.WithQuoteAwareFields())
	}
	return opts
}

func openDecoder() (*csvparser.Decoder, error) {
	if filePath == "" || filePath == "-" {
		return csvparser.NewReaderDecoder(os.Stdin, decoderOptions()...)
	}
	return csvparser.OpenFile(filePath, decoderOptions()...)
}

// run writes every record of decoder to w as one JSON object per line.
// Rows rejected for their field count are skipped; any other error ends the
// dump after flushing the records written so far.
func run(ctx context.Context, decoder *csvparser.Decoder, w io.Writer) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	for record, err := range decoder.Records(ctx) {
		if errors.Is(err, csvparser.ErrFieldCount) {
			slog.WarnContext(ctx, "Skipping record", "error", err)
			continue
		}
		if err != nil {
			return errors.Join(fmt.Errorf("decoding records: %w", err), bw.Flush())
		}
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}
	return bw.Flush()
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if verbose {
		logCfg.Level = slog.LevelDebug
	}
	var output io.Writer = os.Stderr
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file %q: %w", logPath, err)
		}
		defer f.Close()
		output = f
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(output, &logCfg)))

	decoder, err := openDecoder()
	if err != nil {
		return fmt.Errorf("failed to open CSV input %q: %w", filePath, err)
	}
	defer decoder.Close()

	return run(ctx, decoder, os.Stdout)
}

func main() {
	cmdLineParse()
	if err := execute(); err != nil {
		log.Fatal(err)
	}
}
