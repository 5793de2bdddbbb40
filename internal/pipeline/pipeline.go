// Package pipeline wires a snapshot source, the curve builder and a rate sink.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meenmo/zerocurve/config"
	"github.com/meenmo/zerocurve/marketdata"
	"github.com/meenmo/zerocurve/output"
	"github.com/meenmo/zerocurve/utils"
	"github.com/meenmo/zerocurve/zerocurve"
)

// Builder turns snapshot dates into curves.
type Builder struct {
	source  marketdata.Source
	cfg     config.Config
	options zerocurve.Options
	logger  *slog.Logger
}

// NewBuilder validates cfg and keeps src for later loads. The caller closes src.
func NewBuilder(src marketdata.Source, cfg config.Config, logger *slog.Logger) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := cfg.CurveOptions()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{source: src, cfg: cfg, options: opts, logger: logger}, nil
}

// Curve loads the snapshot dated date and builds its curve.
func (b *Builder) Curve(ctx context.Context, date time.Time) (*zerocurve.Curve, error) {
	obs, err := marketdata.LoadObservations(ctx, b.source, b.cfg.Filter(date))
	if err != nil {
		return nil, err
	}
	b.logger.Debug("observations loaded", "snapshot", date.Format(utils.DateLayout), "count", len(obs))

	crv, err := zerocurve.ConstructWith(obs, b.options)
	if err != nil {
		return nil, err
	}
	lo, hi := crv.Range()
	b.logger.Debug("curve built",
		"snapshot", date.Format(utils.DateLayout),
		"boundary", crv.Boundary().String(),
		"extrapolation", crv.Extrapolation().String(),
		"min_tenor", lo,
		"max_tenor", hi,
	)
	return crv, nil
}

// Grid returns the configured resampling grid.
func (b *Builder) Grid() zerocurve.Grid {
	return b.cfg.Grid()
}

// Run performs one batch: load the configured snapshot, build the curve,
// resample it and write the table to the configured sink.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if logger == nil {
		logger = slog.Default()
	}
	snapshot, err := cfg.Snapshot()
	if err != nil {
		return err
	}

	src, err := marketdata.OpenSource(ctx, cfg.InputSource, cfg.InputTable)
	if err != nil {
		return err
	}
	defer src.Close()

	b, err := NewBuilder(src, cfg, logger)
	if err != nil {
		return err
	}
	crv, err := b.Curve(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("build curve for %s: %w", cfg.SnapshotDate, err)
	}

	samples, err := b.Grid().Resample(crv)
	if err != nil {
		return fmt.Errorf("resample: %w", err)
	}

	sink, err := output.Open(ctx, cfg.OutputSink, cfg.OutputTable)
	if err != nil {
		return err
	}
	if err := sink.Write(ctx, snapshot, samples); err != nil {
		sink.Close()
		return err
	}
	if err := sink.Close(); err != nil {
		return err
	}

	logger.Info("rate table written",
		"snapshot", cfg.SnapshotDate,
		"days", len(samples),
		"sink", cfg.OutputSink,
	)
	return nil
}
