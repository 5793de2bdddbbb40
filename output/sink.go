// Package output writes daily rate tables to files, stdout or SQL tables.
package output

import (
	"context"
	"fmt"
	"time"

	"github.com/meenmo/zerocurve/internal/database"
	"github.com/meenmo/zerocurve/zerocurve"
)

// Sink receives one complete, day-ascending rate table per Write.
type Sink interface {
	Write(ctx context.Context, snapshot time.Time, samples []zerocurve.Sample) error
	Close() error
}

var (
	_ Sink = (*CSVSink)(nil)
	_ Sink = (*SQLSink)(nil)
)

// Open picks the sink for target: a postgres:// or clickhouse:// DSN writes to
// table, "-" writes CSV to stdout, anything else is a CSV file path (zstd
// compressed when it ends in .zst).
func Open(ctx context.Context, target, table string) (Sink, error) {
	if target == "" {
		return nil, fmt.Errorf("output.Open: output sink is required")
	}
	if !database.IsDSN(target) {
		return CreateCSV(target)
	}

	db, driver, err := database.Open(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("output.Open: %w", err)
	}
	sink, err := NewSQLSink(db, driver, table)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("output.Open: %w", err)
	}
	sink.owned = true
	return sink, nil
}

func checkOrder(samples []zerocurve.Sample) error {
	for i, s := range samples {
		if s.Day != i+1 {
			return fmt.Errorf("sample %d has day %d, want %d", i, s.Day, i+1)
		}
	}
	return nil
}
