package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/koustreak/rsadapter/internal/database"
	"github.com/koustreak/rsadapter/internal/logger"
)

// AfterConnectFunc runs once on every new physical connection before the
// pool hands it out.
type AfterConnectFunc func(ctx context.Context, conn database.Execer) error

// Driver is a PG-wire implementation of database.DB backed by pgxpool.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

var _ database.DB = (*Driver)(nil)

// Open connects using the filtered connection params and returns a Driver.
// It calls Ping to validate the connection before returning.
func Open(ctx context.Context, cfg *database.Config, params map[string]any, hook AfterConnectFunc, log *logger.Logger) (*Driver, error) {
	if log == nil {
		log = logger.Nop()
	}

	poolCfg, err := buildPoolConfig(cfg, params, log)
	if err != nil {
		return nil, err
	}
	if hook != nil {
		poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			return hook(ctx, connExecer{conn: conn})
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, mapError(err, "failed to create connection pool")
	}

	d := &Driver{pool: pool, log: log}

	if err := d.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	log.With().
		Str("host", poolCfg.ConnConfig.Host).
		Int("port", int(poolCfg.ConnConfig.Port)).
		Str("database", poolCfg.ConnConfig.Database).
		Logger().
		Info("connection pool ready")
	return d, nil
}

// --- database.DB implementation ---

// Ping verifies the database is reachable by acquiring and releasing a connection.
func (d *Driver) Ping(ctx context.Context) error {
	if err := d.pool.Ping(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close drains the connection pool. Call when the application shuts down.
func (d *Driver) Close() {
	d.pool.Close()
}

// Query executes a SQL statement that returns multiple rows.
func (d *Driver) Query(ctx context.Context, sql string, args ...any) (database.Rows, error) {
	rows, err := d.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err, "query failed")
	}
	return &pgxRows{rows: rows}, nil
}

// QueryRow executes a SQL statement expected to return at most one row.
func (d *Driver) QueryRow(ctx context.Context, sql string, args ...any) (database.Row, error) {
	row := d.pool.QueryRow(ctx, sql, args...)
	return &pgxRow{row: row}, nil
}

// Exec executes a statement that returns no rows.
func (d *Driver) Exec(ctx context.Context, sql string, args ...any) error {
	if _, err := d.pool.Exec(ctx, sql, args...); err != nil {
		return mapError(err, "exec failed")
	}
	return nil
}

// Begin starts a transaction.
func (d *Driver) Begin(ctx context.Context, opts database.TxOptions) (database.Tx, error) {
	txOpts := pgx.TxOptions{IsoLevel: pgx.TxIsoLevel(opts.Isolation)}
	if opts.ReadOnly {
		txOpts.AccessMode = pgx.ReadOnly
	}

	tx, err := d.pool.BeginTx(ctx, txOpts)
	if err != nil {
		return nil, mapError(err, "begin failed")
	}
	return &pgxTx{tx: tx}, nil
}

// --- pgx type wrappers ---

// pgxRows wraps pgx.Rows to satisfy database.Rows.
type pgxRows struct {
	rows pgx.Rows
}

func (r *pgxRows) Next() bool { return r.rows.Next() }
func (r *pgxRows) Close()     { r.rows.Close() }

func (r *pgxRows) Scan(dest ...any) error {
	return mapError(r.rows.Scan(dest...), "scan failed")
}

func (r *pgxRows) Err() error {
	return mapError(r.rows.Err(), "row iteration failed")
}

func (r *pgxRows) Columns() ([]string, error) {
	descs := r.rows.FieldDescriptions()
	cols := make([]string, len(descs))
	for i, d := range descs {
		cols[i] = d.Name
	}
	return cols, nil
}

// pgxRow wraps pgx.Row to satisfy database.Row.
type pgxRow struct {
	row pgx.Row
}

func (r *pgxRow) Scan(dest ...any) error {
	return mapError(r.row.Scan(dest...), "scan failed")
}

// pgxTx wraps pgx.Tx to satisfy database.Tx.
type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) Exec(ctx context.Context, sql string, args ...any) error {
	if _, err := t.tx.Exec(ctx, sql, args...); err != nil {
		return mapError(err, "exec failed")
	}
	return nil
}

func (t *pgxTx) Query(ctx context.Context, sql string, args ...any) (database.Rows, error) {
	rows, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err, "query failed")
	}
	return &pgxRows{rows: rows}, nil
}

func (t *pgxTx) Commit(ctx context.Context) error {
	return mapError(t.tx.Commit(ctx), "commit failed")
}

func (t *pgxTx) Rollback(ctx context.Context) error {
	return mapError(t.tx.Rollback(ctx), "rollback failed")
}

// connExecer exposes a single physical connection to session hooks.
type connExecer struct {
	conn *pgx.Conn
}

func (c connExecer) Exec(ctx context.Context, sql string, args ...any) error {
	if _, err := c.conn.Exec(ctx, sql, args...); err != nil {
		return mapError(err, "session setup failed")
	}
	return nil
}
