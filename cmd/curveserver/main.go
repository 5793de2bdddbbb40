package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/meenmo/zerocurve/cmd/curveserver/internal/api"
	"github.com/meenmo/zerocurve/config"
	"github.com/meenmo/zerocurve/internal/logging"
	"github.com/meenmo/zerocurve/internal/pipeline"
	"github.com/meenmo/zerocurve/marketdata"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stderr))
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("curveserver", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config path (optional)")
	addr := fs.String("addr", "", "Listen address (overrides server.addr)")
	input := fs.String("input", "", "CSV path or postgres:// / clickhouse:// DSN (overrides input_source)")
	logLevel := fs.String("log-level", "info", "debug, info, warn or error")
	logFormat := fs.String("log-format", "text", "text or json")
	help := fs.Bool("h", false, "Show help")
	fs.BoolVar(help, "help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *help {
		usage(stderr)
		return 0
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
	if v := strings.TrimSpace(*addr); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(*input); v != "" {
		cfg.InputSource = v
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "err", err)
		return 1
	}

	src, err := marketdata.OpenSource(ctx, cfg.InputSource, cfg.InputTable)
	if err != nil {
		logger.Error("open input source", "err", err)
		return 1
	}
	defer src.Close()

	builder, err := pipeline.NewBuilder(src, cfg, logger)
	if err != nil {
		logger.Error("curve builder", "err", err)
		return 1
	}
	var loader api.CurveLoader = builder
	if cfg.Server.RedisAddr != "" {
		opts, err := cfg.CurveOptions()
		if err != nil {
			logger.Error("curve options", "err", err)
			return 1
		}
		redisCli := redis.NewClient(&redis.Options{Addr: cfg.Server.RedisAddr})
		defer redisCli.Close()
		loader = pipeline.NewRedisLoader(cfg.Server.RedisPrefix, redisCli, builder, cfg.Server.CacheTTL, opts, logger)
		logger.Info("sharing curves through redis", "addr", cfg.Server.RedisAddr)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewServer(loader, cfg, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("curve server listening", "addr", cfg.Server.Addr, "input", cfg.InputSource)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve", "err", err)
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
		return 1
	}
	logger.Info("curve server stopped")
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: curveserver [-config zerocurve.yaml] [-addr :8081] [-input cubic.csv]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve zero curves built from stored yield snapshots.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Routes:")
	fmt.Fprintln(w, "  POST /curves                       build from posted observations")
	fmt.Fprintln(w, "  GET  /curves/{date}/rates?horizon=N daily rates of a snapshot")
	fmt.Fprintln(w, "  GET  /curves/{date}/rate?tenor=18M  rate at one tenor")
}
