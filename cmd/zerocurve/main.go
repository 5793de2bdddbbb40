package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/meenmo/zerocurve/config"
	"github.com/meenmo/zerocurve/internal/logging"
	"github.com/meenmo/zerocurve/internal/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stderr))
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("zerocurve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config path (optional)")
	date := fs.String("date", "", "Snapshot date YYYY-MM-DD")
	horizon := fs.Int("horizon", 0, "Number of daily rows")
	input := fs.String("input", "", "CSV path or postgres:// / clickhouse:// DSN")
	output := fs.String("output", "", "CSV path (- for stdout, .zst to compress) or DSN")
	boundary := fs.String("boundary", "", "Spline end conditions: not-a-knot or natural")
	extrapolation := fs.String("extrapolation", "", "Beyond the observed tenors: cubic or flat")
	dayCount := fs.String("day-count", "", "Day count for the day-to-tenor conversion, e.g. ACT/365F")
	logLevel := fs.String("log-level", "info", "debug, info, warn or error")
	logFormat := fs.String("log-format", "text", "text or json")
	help := fs.Bool("h", false, "Show help")
	fs.BoolVar(help, "help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *help {
		usage(stderr)
		fs.PrintDefaults()
		return 0
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected argument %q\n\n", fs.Arg(0))
		usage(stderr)
		return 2
	}

	logger, err := logging.New(*logLevel, *logFormat, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load config", "err", err)
		return 1
	}

	// Flags win over the file and the environment, but only when given.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "date":
			cfg.SnapshotDate = *date
		case "horizon":
			cfg.HorizonDays = *horizon
		case "input":
			cfg.InputSource = *input
		case "output":
			cfg.OutputSink = *output
		case "boundary":
			cfg.Boundary = *boundary
		case "extrapolation":
			cfg.Extrapolation = *extrapolation
		case "day-count":
			cfg.DayCount = *dayCount
		}
	})

	if err := pipeline.Run(ctx, cfg, logger); err != nil {
		logger.Error("zerocurve failed", "err", err)
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: zerocurve [-config zerocurve.yaml] [-date 2010-01-04] [-input cubic.csv] [-output rates.csv]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build a cubic-spline zero curve from one yield snapshot and write")
	fmt.Fprintln(w, "the daily maturity/rate table.")
	fmt.Fprintln(w)
}
