// Package dbtest provides an in-memory database/sql driver that records
// statements and serves canned rows.
package dbtest

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"sync"
)

// ErrInjected is returned by the statement selected with FailExecAt.
var ErrInjected = errors.New("dbtest: injected failure")

// Exec is one executed statement.
type Exec struct {
	Query string
	Args  []driver.Value
}

// Recorder is the state shared by every connection of a DB from Open.
type Recorder struct {
	// Columns and Rows are returned by every query.
	Columns []string
	Rows    [][]driver.Value
	// QueryErr fails every query when set.
	QueryErr error
	// FailExecAt fails the n-th Exec (1-based); 0 never fails.
	FailExecAt int

	mu        sync.Mutex
	prepared  []string
	execs     []Exec
	queries   []Exec
	commits   int
	rollbacks int
	execCount int
}

// Open returns a *sql.DB backed by r.
func Open(r *Recorder) *sql.DB {
	return sql.OpenDB(connector{r})
}

func (r *Recorder) Prepared() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.prepared...)
}

func (r *Recorder) Execs() []Exec {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Exec(nil), r.execs...)
}

func (r *Recorder) Queries() []Exec {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Exec(nil), r.queries...)
}

// Commits and Rollbacks count finished transactions.
func (r *Recorder) Commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commits
}

func (r *Recorder) Rollbacks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rollbacks
}

type connector struct{ r *Recorder }

func (c connector) Connect(context.Context) (driver.Conn, error) { return &conn{r: c.r}, nil }
func (c connector) Driver() driver.Driver                        { return drv{c.r} }

type drv struct{ r *Recorder }

func (d drv) Open(string) (driver.Conn, error) { return &conn{r: d.r}, nil }

type conn struct{ r *Recorder }

func (c *conn) Prepare(query string) (driver.Stmt, error) {
	c.r.mu.Lock()
	c.r.prepared = append(c.r.prepared, query)
	c.r.mu.Unlock()
	return &stmt{r: c.r, query: query}, nil
}

func (c *conn) Close() error              { return nil }
func (c *conn) Begin() (driver.Tx, error) { return &tx{r: c.r}, nil }

type tx struct{ r *Recorder }

func (t *tx) Commit() error {
	t.r.mu.Lock()
	defer t.r.mu.Unlock()
	t.r.commits++
	return nil
}

func (t *tx) Rollback() error {
	t.r.mu.Lock()
	defer t.r.mu.Unlock()
	t.r.rollbacks++
	return nil
}

type stmt struct {
	r     *Recorder
	query string
}

func (s *stmt) Close() error  { return nil }
func (s *stmt) NumInput() int { return -1 }

func (s *stmt) Exec(args []driver.Value) (driver.Result, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	s.r.execCount++
	if s.r.FailExecAt > 0 && s.r.execCount == s.r.FailExecAt {
		return nil, ErrInjected
	}
	s.r.execs = append(s.r.execs, Exec{Query: s.query, Args: append([]driver.Value(nil), args...)})
	return driver.RowsAffected(1), nil
}

func (s *stmt) Query(args []driver.Value) (driver.Rows, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	s.r.queries = append(s.r.queries, Exec{Query: s.query, Args: append([]driver.Value(nil), args...)})
	if s.r.QueryErr != nil {
		return nil, s.r.QueryErr
	}
	return &rows{columns: s.r.Columns, data: s.r.Rows}, nil
}

type rows struct {
	columns []string
	data    [][]driver.Value
	pos     int
}

func (r *rows) Columns() []string { return r.columns }
func (r *rows) Close() error      { return nil }

func (r *rows) Next(dest []driver.Value) error {
	if r.pos >= len(r.data) {
		return io.EOF
	}
	copy(dest, r.data[r.pos])
	r.pos++
	return nil
}
