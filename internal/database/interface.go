package database

import "context"

// DB is the transport contract every dialect talks through.
// The adapter and dialect packages never import a driver package directly.
type DB interface {
	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the connection pool.
	Close()

	// Query executes a SQL statement that returns multiple rows.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)

	// QueryRow executes a SQL statement that returns at most one row.
	QueryRow(ctx context.Context, sql string, args ...any) (Row, error)

	// Exec executes a statement that returns no rows.
	Exec(ctx context.Context, sql string, args ...any) error

	// Begin starts a transaction with the given options.
	Begin(ctx context.Context, opts TxOptions) (Tx, error)
}

// Execer runs statements that return no rows. Session hooks receive one per
// physical connection.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) error
}

// Tx is an open transaction.
type Tx interface {
	Execer
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// IsolationLevel names a transaction isolation level. The zero value means
// the server default.
type IsolationLevel string

const (
	IsolationDefault        IsolationLevel = ""
	IsolationReadCommitted  IsolationLevel = "read committed"
	IsolationRepeatableRead IsolationLevel = "repeatable read"
	IsolationSerializable   IsolationLevel = "serializable"
)

// TxOptions configures Begin.
type TxOptions struct {
	Isolation IsolationLevel
	ReadOnly  bool
}

// Rows is an abstraction over a database result set.
// Callers must always call Close() when done, even on error.
type Rows interface {
	// Next advances to the next row.
	// Returns false when no more rows exist or on error.
	Next() bool

	// Scan copies the current row's columns into the provided destinations.
	Scan(dest ...any) error

	// Columns returns the column names of the result set.
	Columns() ([]string, error)

	// Close releases resources held by the result set.
	Close()

	// Err returns any error encountered during iteration.
	Err() error
}

// Row is an abstraction over a single database row.
type Row interface {
	Scan(dest ...any) error
}
