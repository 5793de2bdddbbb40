package output

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/meenmo/zerocurve/internal/database"
	"github.com/meenmo/zerocurve/zerocurve"
)

// DefaultTable receives rate tables with columns snapshot_date, maturity_day, rate.
const DefaultTable = "zero_rates"

// SQLSink inserts rate tables into PostgreSQL or ClickHouse.
type SQLSink struct {
	db     *sql.DB
	driver database.Driver
	table  string
	owned  bool
}

// NewSQLSink wraps an open database handle. The caller keeps ownership of db.
func NewSQLSink(db *sql.DB, driver database.Driver, table string) (*SQLSink, error) {
	if table == "" {
		table = DefaultTable
	}
	if err := database.ValidateIdent(table); err != nil {
		return nil, err
	}
	return &SQLSink{db: db, driver: driver, table: table}, nil
}

func (s *SQLSink) insertStatement() string {
	stmt := fmt.Sprintf("INSERT INTO %s (snapshot_date, maturity_day, rate)", s.table)
	if s.driver == database.ClickHouse {
		// clickhouse-go batches rows appended to a prepared bare INSERT.
		return stmt
	}
	return stmt + " VALUES (" + database.Placeholders(s.driver, 3) + ")"
}

func (s *SQLSink) deleteStatement() string {
	return fmt.Sprintf("DELETE FROM %s WHERE snapshot_date = %s", s.table, database.Placeholder(s.driver, 1))
}

// Write replaces the snapshot's rows in a single transaction.
func (s *SQLSink) Write(ctx context.Context, snapshot time.Time, samples []zerocurve.Sample) (err error) {
	if err := checkOrder(samples); err != nil {
		return fmt.Errorf("SQLSink: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("SQLSink %s: begin: %w", s.table, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if s.driver == database.Postgres {
		if _, err = tx.ExecContext(ctx, s.deleteStatement(), snapshot); err != nil {
			return fmt.Errorf("SQLSink %s: delete: %w", s.table, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, s.insertStatement())
	if err != nil {
		return fmt.Errorf("SQLSink %s: prepare: %w", s.table, err)
	}
	defer stmt.Close()

	for _, smp := range samples {
		if _, err = stmt.ExecContext(ctx, snapshot, smp.Day, smp.Rate); err != nil {
			return fmt.Errorf("SQLSink %s: day %d: %w", s.table, smp.Day, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("SQLSink %s: commit: %w", s.table, err)
	}
	return nil
}

// Close releases the database handle when the sink opened it itself.
func (s *SQLSink) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}
