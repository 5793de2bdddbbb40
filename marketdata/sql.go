package marketdata

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/meenmo/zerocurve/internal/database"
)

// DefaultTable holds yield snapshots with columns date, days, flag, rate.
const DefaultTable = "bond_yields"

// SQLSource reads snapshots from a PostgreSQL or ClickHouse table.
type SQLSource struct {
	db     *sql.DB
	driver database.Driver
	table  string
	owned  bool
}

// NewSQLSource wraps an open database handle. The caller keeps ownership of db.
func NewSQLSource(db *sql.DB, driver database.Driver, table string) (*SQLSource, error) {
	if table == "" {
		table = DefaultTable
	}
	if err := database.ValidateIdent(table); err != nil {
		return nil, err
	}
	return &SQLSource{db: db, driver: driver, table: table}, nil
}

func (s *SQLSource) query() string {
	return fmt.Sprintf("SELECT date, days, flag, rate FROM %s WHERE date = %s ORDER BY days",
		s.table, database.Placeholder(s.driver, 1))
}

// Load returns the rows dated snapshot.
func (s *SQLSource) Load(ctx context.Context, snapshot time.Time) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, s.query(), snapshot)
	if err != nil {
		return nil, fmt.Errorf("SQLSource %s: query: %w", s.table, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			date time.Time
			days float64
			flag sql.NullString
			rate float64
		)
		if err := rows.Scan(&date, &days, &flag, &rate); err != nil {
			return nil, fmt.Errorf("SQLSource %s: scan: %w", s.table, err)
		}
		if days != math.Trunc(days) {
			return nil, fmt.Errorf("SQLSource %s: days %v is not a whole number", s.table, days)
		}
		records = append(records, Record{Date: date, Days: int(days), Flag: flag.String, Rate: rate})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SQLSource %s: %w", s.table, err)
	}
	return records, nil
}

// Close releases the database handle when the source opened it itself.
func (s *SQLSource) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}
