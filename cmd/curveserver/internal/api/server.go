// Package api serves yield curves over HTTP.
package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/meenmo/zerocurve/config"
	"github.com/meenmo/zerocurve/utils"
	"github.com/meenmo/zerocurve/zerocurve"
)

const (
	// MaxHorizonDays bounds the number of rows a single request may ask for.
	MaxHorizonDays = 36500

	// MaxBodyBytes and MaxObservations bound a POST /curves body.
	MaxBodyBytes    = 1 << 20
	MaxObservations = 1000
)

// CurveLoader builds the curve of a stored snapshot.
type CurveLoader interface {
	Curve(ctx context.Context, date time.Time) (*zerocurve.Curve, error)
}

// Server holds the handlers' dependencies.
type Server struct {
	loader CurveLoader
	cfg    config.Config
	curves *cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewServer creates a Server. cfg supplies the request defaults and the
// cache lifetime; a zero cfg.Server.CacheTTL disables caching.
func NewServer(loader CurveLoader, cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.Server.CacheTTL
	cleanup := 2 * ttl
	if ttl <= 0 {
		cleanup = 0
	}
	return &Server{
		loader: loader,
		cfg:    cfg,
		curves: cache.New(ttl, cleanup),
		ttl:    ttl,
		logger: logger,
	}
}

// snapshotCurve returns the cached curve for date, loading it on a miss.
func (s *Server) snapshotCurve(ctx context.Context, date time.Time) (*zerocurve.Curve, error) {
	key := date.Format(utils.DateLayout)
	if v, ok := s.curves.Get(key); ok {
		if crv, ok := v.(*zerocurve.Curve); ok {
			return crv, nil
		}
	}

	crv, err := s.loader.Curve(ctx, date)
	if err != nil {
		return nil, err
	}
	if s.ttl > 0 {
		s.curves.Set(key, crv, s.ttl)
	}
	s.logger.Info("curve loaded", "snapshot", key, "observations", len(crv.Observations()))
	return crv, nil
}
