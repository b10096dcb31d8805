package redshift

import (
	"context"
	"fmt"

	"github.com/koustreak/rsadapter/internal/database"
	"github.com/koustreak/rsadapter/internal/errs"
	"github.com/koustreak/rsadapter/internal/logger"
)

// columnDefinitionsQuery lists the live columns of one table in attribute
// order. %s is the table name as a string literal; the regclass cast
// resolves it against the session search_path.
const columnDefinitionsQuery = `SELECT a.attname, format_type(a.atttypid, a.atttypmod),
       pg_get_expr(d.adbin, d.adrelid), a.attnotnull, a.atttypid, a.atttypmod
  FROM pg_attribute a LEFT JOIN pg_attrdef d
    ON a.attrelid = d.adrelid AND a.attnum = d.adnum
 WHERE a.attrelid = %s::regclass
   AND a.attnum > 0 AND NOT a.attisdropped
 ORDER BY a.attnum`

// ColumnDefinitionsSQL renders the catalog query for an already quoted
// table name such as "public"."orders".
func ColumnDefinitionsSQL(tableName string) string {
	return fmt.Sprintf(columnDefinitionsQuery, database.Quote(tableName))
}

// SQLSTATE codes meaning the table name did not resolve.
var schemaLookupCodes = map[string]bool{
	"42P01": true, // undefined_table
	"3F000": true, // invalid_schema_name
	"42602": true, // invalid_name
}

// Catalog reads column metadata from the system catalog.
type Catalog struct {
	db  database.DB
	log *logger.Logger
}

var _ database.CatalogIntrospector = (*Catalog)(nil)

// NewCatalog returns a Catalog querying through db.
func NewCatalog(db database.DB, log *logger.Logger) *Catalog {
	if log == nil {
		log = logger.Nop()
	}
	return &Catalog{db: db, log: log}
}

// ColumnDefinitions returns one descriptor per live column of tableName,
// ordered by attribute number. tableName must already be quoted.
func (c *Catalog) ColumnDefinitions(ctx context.Context, tableName string) ([]database.ColumnDescriptor, error) {
	sql := ColumnDefinitionsSQL(tableName)
	c.log.DebugWith("query", map[string]any{"name": "SCHEMA", "sql": sql, "table": tableName})

	rows, err := c.db.Query(ctx, sql)
	if err != nil {
		return nil, lookupError(tableName, err)
	}
	defer rows.Close()

	descs := make([]database.ColumnDescriptor, 0)
	for rows.Next() {
		var d database.ColumnDescriptor
		if err := rows.Scan(&d.Name, &d.FormattedType, &d.DefaultExpression, &d.NotNull, &d.TypeOID, &d.TypeModifier); err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, lookupError(tableName, err)
	}
	return descs, nil
}

// lookupError turns a name-resolution failure into ErrKindSchemaLookup and
// passes every other error through unchanged.
func lookupError(tableName string, err error) error {
	if schemaLookupCodes[errs.SQLState(err)] {
		return errs.Wrap(errs.ErrKindSchemaLookup, "table "+tableName+" does not resolve", err)
	}
	return err
}
