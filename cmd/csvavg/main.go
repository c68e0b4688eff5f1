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
	"golang.org/x/sync/errgroup"

	"csvstream/pkg/aggregator"
	apiGroupify "csvstream/pkg/api/groupify"
	"csvstream/pkg/csvparser"
	"csvstream/pkg/groupify"
)

const itemQueueSize = 10000

var (
	logPath   string
	filePath  string
	groupCol  string
	valueCol  string
	useFloats bool
	verbose   bool
	logCfg    = slog.HandlerOptions{
		Level: slog.LevelError,
	}
)

// groupAverage is one element of the printed result.
type groupAverage struct {
	Group   string `json:"group"`
	Average string `json:"average"`
}

func cmdLineParse() {
	pflag.StringVarP(&logPath, "log", "l", "", "path to log file. Default is stderr")
	pflag.StringVarP(&filePath, "file", "f", "", "path to CSV file with the values to average")
	pflag.StringVarP(&groupCol, "group", "g", "", "name of the column to group by")
	pflag.StringVarP(&valueCol, "value", "n", "", "name of the numeric column to average")
	pflag.BoolVar(&useFloats, "floats", false, "average in float64 instead of exact decimals")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "enable verbose (debug) logging")
	pflag.Parse()
}

// run averages the value column of decoder per group column and prints the
// result to w as a JSON array sorted by group.
func run(ctx context.Context, decoder *csvparser.Decoder, w io.Writer, opts ...groupify.Option) error {
	grouper, err := groupify.NewColumnGrouper(ctx, decoder, opts...)
	if err != nil {
		return fmt.Errorf("failed to create grouper: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, egCtx := errgroup.WithContext(ctx)
	items := make(chan apiGroupify.GroupItem, itemQueueSize)
	eg.Go(func() error {
		return grouper.GroupValues(egCtx, items)
	})

	result, err := aggregator.NewAvgBy().Process(egCtx, items)
	if err != nil {
		// unblock the grouper
		cancel()
	}
	// a grouping failure cancels Process, so report it first
	if werr := eg.Wait(); werr != nil && !errors.Is(werr, context.Canceled) {
		err = werr
	}
	if err != nil {
		return fmt.Errorf("averaging values: %w", err)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "[")
	for i, g := range result {
		line, err := json.Marshal(groupAverage{
			Group:   g.GroupKey().String(),
			Average: g.AverageValue().String(),
		})
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		comma := ","
		if i == len(result)-1 {
			comma = ""
		}
		fmt.Fprintf(bw, "  %s%s\n", line, comma)
	}
	fmt.Fprintln(bw, "]")
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

	if filePath == "" {
		return errors.New("please provide a CSV file path using the --file flag")
	}
	decoder, err := csvparser.OpenFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to open CSV file %q: %w", filePath, err)
	}
	defer decoder.Close()

	opts := []groupify.Option{groupify.WithColNames(groupCol, valueCol)}
	if useFloats {
		opts = append(opts, groupify.WithFloats())
	}
	return run(ctx, decoder, os.Stdout, opts...)
}

func main() {
	cmdLineParse()
	if err := execute(); err != nil {
		log.Fatal(err)
	}
}
