// Package dbtest provides an in-memory database.DB for tests.
package dbtest

import (
	"context"
	"reflect"
	"sync"

	"github.com/koustreak/rsadapter/internal/database"
	"github.com/koustreak/rsadapter/internal/errs"
)

// Call is one statement seen by the fake.
type Call struct {
	SQL  string
	Args []any
}

// Result is what a query returns. Err fails the Query call itself; IterErr
// surfaces from Rows.Err after iteration.
type Result struct {
	Columns []string
	Rows    [][]any
	Err     error
	IterErr error
}

// DB records statements and answers queries through QueryFunc.
type DB struct {
	mu sync.Mutex

	QueryFunc func(sql string, args []any) Result
	ExecErr   error
	PingErr   error

	Queries []Call
	Execs   []Call
	Begins  []database.TxOptions
	Closed  bool
}

var _ database.DB = (*DB)(nil)

// New returns a fake that answers every query with r.
func New(r Result) *DB {
	return &DB{QueryFunc: func(string, []any) Result { return r }}
}

func (d *DB) Ping(context.Context) error { return d.PingErr }

func (d *DB) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Closed = true
}

func (d *DB) Query(ctx context.Context, sql string, args ...any) (database.Rows, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindTimeout, "query canceled", err)
	}

	d.mu.Lock()
	d.Queries = append(d.Queries, Call{SQL: sql, Args: args})
	fn := d.QueryFunc
	d.mu.Unlock()

	var r Result
	if fn != nil {
		r = fn(sql, args)
	}
	if r.Err != nil {
		return nil, r.Err
	}
	return &Rows{result: r}, nil
}

func (d *DB) QueryRow(ctx context.Context, sql string, args ...any) (database.Row, error) {
	rows, err := d.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return &row{rows: rows.(*Rows)}, nil
}

func (d *DB) Exec(_ context.Context, sql string, args ...any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Execs = append(d.Execs, Call{SQL: sql, Args: args})
	return d.ExecErr
}

func (d *DB) Begin(_ context.Context, opts database.TxOptions) (database.Tx, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Begins = append(d.Begins, opts)
	return &Tx{db: d}, nil
}

// ExecSQL returns the SQL of every Exec call in order.
func (d *DB) ExecSQL() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.Execs))
	for i, c := range d.Execs {
		out[i] = c.SQL
	}
	return out
}

// Tx writes through to the parent fake and records the outcome.
type Tx struct {
	db         *DB
	Committed  bool
	RolledBack bool
}

func (t *Tx) Exec(ctx context.Context, sql string, args ...any) error {
	return t.db.Exec(ctx, sql, args...)
}

func (t *Tx) Query(ctx context.Context, sql string, args ...any) (database.Rows, error) {
	return t.db.Query(ctx, sql, args...)
}

func (t *Tx) Commit(context.Context) error {
	t.Committed = true
	return nil
}

func (t *Tx) Rollback(context.Context) error {
	t.RolledBack = true
	return nil
}

// Rows iterates a Result.
type Rows struct {
	result Result
	pos    int
	Closed bool
}

func (r *Rows) Next() bool {
	if r.pos >= len(r.result.Rows) {
		return false
	}
	r.pos++
	return true
}

// Scan assigns the current row into dest by reflection. nil values zero the
// destination.
func (r *Rows) Scan(dest ...any) error {
	if r.pos == 0 || r.pos > len(r.result.Rows) {
		return errs.New(errs.ErrKindQueryFailed, "scan called without a current row")
	}
	values := r.result.Rows[r.pos-1]
	if len(dest) != len(values) {
		return errs.Newf(errs.ErrKindQueryFailed, "scan got %d destinations for %d columns", len(dest), len(values))
	}
	for i, d := range dest {
		dv := reflect.ValueOf(d).Elem()
		if values[i] == nil {
			dv.Set(reflect.Zero(dv.Type()))
			continue
		}
		v := reflect.ValueOf(values[i])
		if !v.Type().AssignableTo(dv.Type()) {
			return errs.Newf(errs.ErrKindQueryFailed, "cannot scan %T into %s", values[i], dv.Type())
		}
		dv.Set(v)
	}
	return nil
}

func (r *Rows) Columns() ([]string, error) { return r.result.Columns, nil }

func (r *Rows) Close() { r.Closed = true }

func (r *Rows) Err() error {
	if r.pos >= len(r.result.Rows) {
		return r.result.IterErr
	}
	return nil
}

type row struct {
	rows *Rows
}

func (r *row) Scan(dest ...any) error {
	defer r.rows.Close()
	if !r.rows.Next() {
		return errs.New(errs.ErrKindNotFound, "record not found")
	}
	return r.rows.Scan(dest...)
}
