// Package database opens the SQL backends used for yield snapshots and rate
// tables and hides the differences between their dialects.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/lib/pq"
)

// Driver is a database/sql driver name.
type Driver string

const (
	Postgres   Driver = "postgres"
	ClickHouse Driver = "clickhouse"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// DriverFor returns the driver implied by a DSN scheme, or false when target is
// not a database DSN (e.g. a file path).
func DriverFor(target string) (Driver, bool) {
	lower := strings.ToLower(strings.TrimSpace(target))
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return Postgres, true
	case strings.HasPrefix(lower, "clickhouse://"):
		return ClickHouse, true
	default:
		return "", false
	}
}

// IsDSN reports whether target names a database rather than a file.
func IsDSN(target string) bool {
	_, ok := DriverFor(target)
	return ok
}

// Open opens and pings the database named by dsn.
func Open(ctx context.Context, dsn string) (*sql.DB, Driver, error) {
	driver, ok := DriverFor(dsn)
	if !ok {
		return nil, "", fmt.Errorf("database: unsupported DSN scheme in %q", redact(dsn))
	}
	db, err := sql.Open(string(driver), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("database: open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("database: ping %s: %w", driver, err)
	}
	return db, driver, nil
}

// Placeholder returns the n-th (1-based) bind parameter for the driver.
func Placeholder(driver Driver, n int) string {
	if driver == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Placeholders returns a comma separated list of count bind parameters.
func Placeholders(driver Driver, count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = Placeholder(driver, i+1)
	}
	return strings.Join(parts, ", ")
}

// ValidateIdent rejects table names that could not be interpolated into SQL safely.
func ValidateIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("database: invalid identifier %q", name)
	}
	return nil
}

// redact hides the password part of a DSN for error messages.
func redact(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	userinfo := dsn[scheme+3 : at]
	if colon := strings.Index(userinfo, ":"); colon >= 0 {
		userinfo = userinfo[:colon] + ":xxxxx"
	}
	return dsn[:scheme+3] + userinfo + dsn[at:]
}
