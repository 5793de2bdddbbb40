package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/meenmo/zerocurve/utils"
	"github.com/meenmo/zerocurve/zerocurve"
)

// Loader builds the curve of a snapshot date.
type Loader interface {
	Curve(ctx context.Context, date time.Time) (*zerocurve.Curve, error)
}

var (
	_ Loader = (*Builder)(nil)
	_ Loader = (*RedisLoader)(nil)
)

// RedisLoader keeps the observations of built curves in Redis so that
// several servers share one load per snapshot. Redis failures fall through
// to the wrapped Loader.
type RedisLoader struct {
	preKey   string
	redisCli *redis.Client
	next     Loader
	ttl      time.Duration
	options  zerocurve.Options
	logger   *slog.Logger
}

func NewRedisLoader(preKey string, redisCli *redis.Client, next Loader, ttl time.Duration,
	options zerocurve.Options, logger *slog.Logger) *RedisLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLoader{
		preKey:   preKey,
		redisCli: redisCli,
		next:     next,
		ttl:      ttl,
		options:  options,
		logger:   logger,
	}
}

func (impl *RedisLoader) curveKey(date time.Time) string {
	return fmt.Sprintf("%scurve:%s:%s:%s", impl.preKey, date.Format(utils.DateLayout),
		impl.options.Boundary, impl.options.Extrapolation)
}

func (impl *RedisLoader) Curve(ctx context.Context, date time.Time) (*zerocurve.Curve, error) {
	key := impl.curveKey(date)

	raw, err := impl.redisCli.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		crv, err := decodeCurve(raw, impl.options)
		if err == nil {
			return crv, nil
		}
		impl.logger.Warn("discarding cached curve", "key", key, "err", err)
	case !errors.Is(err, redis.Nil):
		impl.logger.Warn("redis get", "key", key, "err", err)
	}

	crv, err := impl.next.Curve(ctx, date)
	if err != nil {
		return nil, err
	}

	raw, err = json.Marshal(crv.Observations())
	if err != nil {
		return nil, err
	}
	if err := impl.redisCli.Set(ctx, key, raw, impl.ttl).Err(); err != nil {
		impl.logger.Warn("redis set", "key", key, "err", err)
	}
	return crv, nil
}

func decodeCurve(raw []byte, options zerocurve.Options) (*zerocurve.Curve, error) {
	var obs []zerocurve.Observation
	if err := json.Unmarshal(raw, &obs); err != nil {
		return nil, err
	}
	return zerocurve.ConstructWith(obs, options)
}
