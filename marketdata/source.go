package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/meenmo/zerocurve/internal/database"
	"github.com/meenmo/zerocurve/zerocurve"
)

// Source supplies the raw rows of one snapshot date.
type Source interface {
	Load(ctx context.Context, snapshot time.Time) ([]Record, error)
	Close() error
}

var (
	_ Source = (*CSVSource)(nil)
	_ Source = (*SQLSource)(nil)
)

// OpenSource picks the source for target: a postgres:// or clickhouse:// DSN
// opens a SQLSource on table, anything else is read as a CSV file path.
func OpenSource(ctx context.Context, target, table string) (Source, error) {
	if target == "" {
		return nil, fmt.Errorf("OpenSource: input source is required")
	}
	if !database.IsDSN(target) {
		return NewCSVSource(target), nil
	}

	db, driver, err := database.Open(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("OpenSource: %w", err)
	}
	src, err := NewSQLSource(db, driver, table)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("OpenSource: %w", err)
	}
	src.owned = true
	return src, nil
}

// LoadObservations loads a snapshot from src and shapes it with f.
func LoadObservations(ctx context.Context, src Source, f Filter) ([]zerocurve.Observation, error) {
	records, err := src.Load(ctx, f.SnapshotDate)
	if err != nil {
		return nil, err
	}
	return Observations(records, f)
}
