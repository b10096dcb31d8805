package schema

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/koustreak/rsadapter/internal/database"
	"github.com/koustreak/rsadapter/internal/errs"
	"github.com/koustreak/rsadapter/internal/logger"
)

// Source is what the introspector needs from an adapter.
// *database.Adapter and every dialect adapter embedding it satisfy it.
type Source interface {
	Name() string
	DB() database.DB
	Columns(ctx context.Context, table string) ([]database.Column, error)
}

// Introspector implements Reader using information_schema for table
// discovery and the adapter's catalog path for columns.
type Introspector struct {
	src Source
	log *logger.Logger
	now func() time.Time
}

var _ Reader = (*Introspector)(nil)

// NewIntrospector creates an introspector over src.
func NewIntrospector(src Source, log *logger.Logger) *Introspector {
	if log == nil {
		log = logger.Nop()
	}
	return &Introspector{src: src, log: log, now: time.Now}
}

// ListTables returns all user-defined table names in the given schema
func (p *Introspector) ListTables(ctx context.Context, schema string) ([]string, error) {
	const q = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name`

	rows, err := p.src.DB().Query(ctx, q, schema)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "list tables", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "scan table name", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "list tables", err)
	}
	return tables, nil
}

// TableExists checks whether a specific table exists
func (p *Introspector) TableExists(ctx context.Context, schema, table string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = $1 AND table_name = $2
		)`

	row, err := p.src.DB().QueryRow(ctx, q, schema, table)
	if err != nil {
		return false, errs.Wrap(errs.ErrKindQueryFailed, "table exists check", err)
	}

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, errs.Wrap(errs.ErrKindQueryFailed, "table exists check", err)
	}
	return exists, nil
}

// InspectTable returns column details for a single table
func (p *Introspector) InspectTable(ctx context.Context, schema, table string) (*TableInfo, error) {
	cols, err := p.src.Columns(ctx, qualify(schema, table))
	if err != nil {
		return nil, err
	}
	return &TableInfo{Schema: schema, Name: table, Columns: cols}, nil
}

// InspectSchema reads every base table of schema. The result carries a fresh
// ID and can be handed straight to a SnapshotStore.
func (p *Introspector) InspectSchema(ctx context.Context, schema string) (*SchemaInfo, error) {
	names, err := p.ListTables(ctx, schema)
	if err != nil {
		return nil, err
	}

	info := &SchemaInfo{
		ID:      uuid.NewString(),
		Adapter: p.src.Name(),
		Schema:  schema,
		TakenAt: p.now().UTC(),
		Tables:  make([]TableInfo, 0, len(names)),
	}

	for _, name := range names {
		t, err := p.InspectTable(ctx, schema, name)
		if err != nil {
			return nil, err
		}
		info.Tables = append(info.Tables, *t)
	}

	p.log.With().
		Str("schema", schema).
		Int("tables", len(info.Tables)).
		Logger().
		Debug("schema inspected")

	return info, nil
}

func qualify(schema, table string) string {
	if schema == "" {
		return database.QuoteIdent(table)
	}
	return database.QuoteIdent(schema) + "." + database.QuoteIdent(table)
}
