package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/koustreak/rsadapter/internal/errs"
	"github.com/koustreak/rsadapter/internal/logger"
)

// MinimumVersion is the oldest server version the base adapter accepts.
const MinimumVersion = 80200

// Adapter is the generic relational layer. Everything dialect-specific is
// asked of the Dialect it was built with.
type Adapter struct {
	db           DB
	dialect      Dialect
	types        *TypeMap
	cache        *SchemaCache
	log          *logger.Logger
	queryTimeout time.Duration
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger used for query tags.
func WithLogger(l *logger.Logger) Option {
	return func(a *Adapter) { a.log = l }
}

// WithSchemaCacheTTL sets how long decoded columns are kept.
func WithSchemaCacheTTL(ttl time.Duration) Option {
	return func(a *Adapter) { a.cache = NewSchemaCache(ttl) }
}

// WithQueryTimeout bounds every statement the adapter issues.
func WithQueryTimeout(d time.Duration) Option {
	return func(a *Adapter) { a.queryTimeout = d }
}

// NewAdapter wires db and dialect together, checks the version gate and
// builds the dialect's type map.
func NewAdapter(db DB, dialect Dialect, opts ...Option) (*Adapter, error) {
	a := &Adapter{
		db:      db,
		dialect: dialect,
		cache:   NewSchemaCache(0),
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.RequireVersion(MinimumVersion); err != nil {
		return nil, err
	}

	reg := NewTypeRegistry()
	if err := dialect.InitializeTypeMap(reg); err != nil {
		return nil, err
	}
	types, err := reg.Build()
	if err != nil {
		return nil, err
	}
	a.types = types
	return a, nil
}

// Name returns the dialect name.
func (a *Adapter) Name() string { return a.dialect.Name() }

// DB returns the underlying transport.
func (a *Adapter) DB() DB { return a.db }

// TypeMap returns the frozen decoding rules.
func (a *Adapter) TypeMap() *TypeMap { return a.types }

// FeatureSet reports the dialect's capability answers.
func (a *Adapter) FeatureSet() FeatureSet { return FeatureSetOf(a.dialect) }

// NativeTypes returns the dialect's DDL fragments.
func (a *Adapter) NativeTypes() map[ColumnKind]NativeType { return a.dialect.NativeDatabaseTypes() }

// Ping verifies the database is reachable.
func (a *Adapter) Ping(ctx context.Context) error { return a.db.Ping(ctx) }

// Close releases the transport.
func (a *Adapter) Close() { a.db.Close() }

// RequireVersion fails with ErrKindUnsupported when the dialect reports a
// version below min.
func (a *Adapter) RequireVersion(min int) error {
	if v := a.dialect.PostgreSQLVersion(); v < min {
		return errs.Newf(errs.ErrKindUnsupported, "%s reports version %d, need at least %d", a.dialect.Name(), v, min)
	}
	return nil
}

// --- Schema ---

// Columns returns the decoded columns of table, reading the catalog on a
// cache miss. table may be schema-qualified.
func (a *Adapter) Columns(ctx context.Context, table string) ([]Column, error) {
	if cols, ok := a.cache.Get(table); ok {
		return cols, nil
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	descs, err := a.dialect.ColumnDefinitions(ctx, QuoteTableName(table))
	if err != nil {
		return nil, err
	}

	cols := make([]Column, 0, len(descs))
	for _, d := range descs {
		col, err := BuildColumn(d, a.types)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}

	a.cache.Set(table, cols)
	return cols, nil
}

// ClearSchemaCache drops cached columns for the named tables, or for every
// table when none are named.
func (a *Adapter) ClearSchemaCache(tables ...string) {
	if len(tables) == 0 {
		a.cache.Clear()
		return
	}
	for _, t := range tables {
		a.cache.Invalidate(t)
	}
}

// --- DDL / DML rendering ---

// TypeOptions carries the optional facets of a column in DDL.
type TypeOptions struct {
	Limit     *int
	Precision *int
	Scale     *int
}

// ColumnDef describes one column of a CREATE TABLE statement.
type ColumnDef struct {
	Name    string
	Kind    ColumnKind
	Options TypeOptions
	NotNull bool
	Default any // nil means no DEFAULT clause
}

// TypeToSQL renders the DDL type for kind. Kinds the dialect does not know
// are passed through verbatim.
func (a *Adapter) TypeToSQL(kind ColumnKind, opts TypeOptions) (string, error) {
	native, ok := a.dialect.NativeDatabaseTypes()[kind]
	if !ok {
		return string(kind), nil
	}

	switch kind {
	case KindDecimal:
		switch {
		case opts.Precision != nil && opts.Scale != nil:
			return fmt.Sprintf("%s(%d,%d)", native.Name, *opts.Precision, *opts.Scale), nil
		case opts.Precision != nil:
			return fmt.Sprintf("%s(%d)", native.Name, *opts.Precision), nil
		case opts.Scale != nil:
			return "", errs.New(errs.ErrKindInvalidInput, "decimal scale given without precision")
		}
	case KindInteger:
		if opts.Limit != nil {
			switch l := *opts.Limit; {
			case l >= 1 && l <= 2:
				return "smallint", nil
			case l >= 3 && l <= 4:
				return "integer", nil
			case l >= 5 && l <= 8:
				return "bigint", nil
			default:
				return "", errs.Newf(errs.ErrKindInvalidInput, "no integer type with byte size %d", l)
			}
		}
	case KindDateTime, KindTime:
		if opts.Precision != nil {
			return fmt.Sprintf("%s(%d)", native.Name, *opts.Precision), nil
		}
	}

	if opts.Limit != nil && !strings.Contains(native.Name, "(") {
		return fmt.Sprintf("%s(%d)", native.Name, *opts.Limit), nil
	}
	return native.SQL(), nil
}

// CreateTableSQL renders a CREATE TABLE statement.
func (a *Adapter) CreateTableSQL(table string, cols []ColumnDef) (string, error) {
	if len(cols) == 0 {
		return "", errs.Newf(errs.ErrKindInvalidInput, "table %q has no columns", table)
	}

	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		typ, err := a.TypeToSQL(c.Kind, c.Options)
		if err != nil {
			return "", fmt.Errorf("column %q: %w", c.Name, err)
		}
		part := QuoteIdent(c.Name) + " " + typ
		if c.Default != nil {
			part += " DEFAULT " + Quote(c.Default)
		}
		if c.NotNull {
			part += " NOT NULL"
		}
		parts = append(parts, part)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", QuoteTableName(table), strings.Join(parts, ", ")), nil
}

// InsertSQL renders a parameterized INSERT. The RETURNING clause is emitted
// only when the dialect supports it; otherwise returning is ignored.
func (a *Adapter) InsertSQL(table string, columns []string, returning string) (string, error) {
	if len(columns) == 0 {
		return "", errs.Newf(errs.ErrKindInvalidInput, "insert into %q names no columns", table)
	}

	quoted := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = QuoteIdent(c)
		params[i] = fmt.Sprintf("$%d", i+1)
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteTableName(table), strings.Join(quoted, ", "), strings.Join(params, ", "))
	if returning != "" && a.dialect.SupportsInsertWithReturning() {
		sql += " RETURNING " + QuoteIdent(returning)
	}
	return sql, nil
}

// --- Transactions ---

// Begin opens a transaction. A non-default isolation level is rejected when
// the dialect cannot honor it.
func (a *Adapter) Begin(ctx context.Context, opts TxOptions) (Tx, error) {
	if opts.Isolation != IsolationDefault && !a.dialect.SupportsTransactionIsolation() {
		return nil, errs.Newf(errs.ErrKindUnsupported, "%s does not support isolation level %q", a.dialect.Name(), opts.Isolation)
	}
	return a.db.Begin(ctx, opts)
}

// Savepoint opens a nested subtransaction inside tx.
func (a *Adapter) Savepoint(ctx context.Context, tx Execer, name string) error {
	if !a.dialect.SupportsSavepoints() {
		return errs.Newf(errs.ErrKindUnsupported, "%s does not support savepoints", a.dialect.Name())
	}
	return a.Execute(ctx, "SAVEPOINT "+QuoteIdent(name), "TRANSACTION", tx)
}

// DisableReferentialIntegrity runs fn with foreign key enforcement turned
// off for the session, unless the dialect supplies its own hook.
func (a *Adapter) DisableReferentialIntegrity(ctx context.Context, fn func(context.Context) error) error {
	if hook, ok := a.dialect.(ReferentialIntegrityHook); ok {
		return hook.WithoutReferentialIntegrity(ctx, fn)
	}

	if err := a.Execute(ctx, "SET session_replication_role = replica", "SCHEMA", nil); err != nil {
		return err
	}
	defer func() {
		if err := a.Execute(context.WithoutCancel(ctx), "SET session_replication_role = DEFAULT", "SCHEMA", nil); err != nil {
			a.log.ErrorWith("restoring referential integrity", err, nil)
		}
	}()
	return fn(ctx)
}

// --- Statements ---

// Execute runs sql through ex, or through the pool when ex is nil. name tags
// the statement in the debug log.
func (a *Adapter) Execute(ctx context.Context, sql, name string, ex Execer) error {
	a.logQuery(name, sql)
	if ex == nil {
		ex = a.db
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()
	return ex.Exec(ctx, sql)
}

// SelectRows runs a query and returns every row as a column→value map.
func (a *Adapter) SelectRows(ctx context.Context, sql, name string, args ...any) ([]map[string]any, error) {
	a.logQuery(name, sql)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	rows, err := a.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return ScanRows(rows)
}

// Select starts a read query against table.
func (a *Adapter) Select(table string) *SelectBuilder {
	return Select(table)
}

// List runs b and casts every value of a known column to its semantic type.
func (a *Adapter) List(ctx context.Context, b *SelectBuilder) ([]map[string]any, error) {
	cols, err := a.Columns(ctx, b.Table())
	if err != nil {
		return nil, err
	}

	byName := make(map[string]Column, len(cols))
	for _, c := range cols {
		byName[c.Name] = c
	}
	if err := b.checkColumns(byName); err != nil {
		return nil, err
	}

	sql, args, err := b.Build()
	if err != nil {
		return nil, err
	}

	rows, err := a.SelectRows(ctx, sql, "LIST", args...)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		for k, v := range row {
			col, ok := byName[k]
			if !ok {
				continue
			}
			cast, err := col.Type.Cast(v)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", k, err)
			}
			row[k] = cast
		}
	}
	return rows, nil
}

func (a *Adapter) logQuery(name, sql string) {
	if a.log.DebugEnabled() {
		a.log.DebugWith("query", map[string]any{"name": name, "sql": sql, "adapter": a.dialect.Name()})
	}
}

func (a *Adapter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.queryTimeout)
}
