package schema_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/koustreak/rsadapter/internal/database"
	"github.com/koustreak/rsadapter/internal/database/dbtest"
	"github.com/koustreak/rsadapter/internal/errs"
	"github.com/koustreak/rsadapter/internal/redshift"
	"github.com/koustreak/rsadapter/internal/schema"
	"github.com/koustreak/rsadapter/internal/sqltype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func int32Ptr(v int32) *int32 { return &v }

var catalogColumns = []string{"attname", "format_type", "pg_get_expr", "attnotnull", "atttypid", "atttypmod"}

// warehouse answers the information_schema and catalog queries for a small
// "sales" schema with two tables.
func warehouse(sql string, args []any) dbtest.Result {
	switch {
	case strings.Contains(sql, "SELECT EXISTS"):
		return dbtest.Result{Columns: []string{"exists"}, Rows: [][]any{{args[1] == "orders"}}}
	case strings.Contains(sql, "information_schema.tables"):
		if args[0] != "sales" {
			return dbtest.Result{Columns: []string{"table_name"}}
		}
		return dbtest.Result{Columns: []string{"table_name"}, Rows: [][]any{{"customers"}, {"orders"}}}
	case strings.Contains(sql, "pg_attribute"):
		switch regclassArg(sql) {
		case `"sales"."customers"`:
			return dbtest.Result{Columns: catalogColumns, Rows: [][]any{
				{"id", "integer", nil, true, uint32(23), int32Ptr(-1)},
				{"name", "character varying(256)", nil, false, uint32(1043), int32Ptr(260)},
			}}
		case `"sales"."orders"`:
			return dbtest.Result{Columns: catalogColumns, Rows: [][]any{
				{"id", "bigint", nil, true, uint32(20), int32Ptr(-1)},
				{"placed_at", "timestamp without time zone", strPtr("getdate()"), false, uint32(1114), int32Ptr(-1)},
			}}
		}
		return dbtest.Result{Err: errs.WithCode(errs.ErrKindQueryFailed, "relation does not exist", "42P01", nil)}
	}
	return dbtest.Result{Err: errs.Newf(errs.ErrKindQueryFailed, "unexpected query: %s", sql)}
}

// regclassArg extracts the table literal cast to regclass in a catalog query.
func regclassArg(sql string) string {
	_, rest, _ := strings.Cut(sql, "a.attrelid = '")
	lit, _, _ := strings.Cut(rest, "'::regclass")
	return strings.ReplaceAll(lit, "''", "'")
}

func newIntrospector(t *testing.T) (*schema.Introspector, *dbtest.DB) {
	t.Helper()
	db := &dbtest.DB{QueryFunc: warehouse}
	a, err := redshift.New(db, database.DefaultConfig(redshift.AdapterName), nil)
	require.NoError(t, err)
	return schema.NewIntrospector(a, nil), db
}

func TestIntrospector_ListTables(t *testing.T) {
	in, _ := newIntrospector(t)
	ctx := context.Background()

	tables, err := in.ListTables(ctx, "sales")
	require.NoError(t, err)
	assert.Equal(t, []string{"customers", "orders"}, tables)

	tables, err = in.ListTables(ctx, "empty")
	require.NoError(t, err)
	assert.NotNil(t, tables)
	assert.Empty(t, tables)
}

func TestIntrospector_TableExists(t *testing.T) {
	in, _ := newIntrospector(t)
	ctx := context.Background()

	ok, err := in.TableExists(ctx, "sales", "orders")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = in.TableExists(ctx, "sales", "refunds")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIntrospector_InspectTable(t *testing.T) {
	in, db := newIntrospector(t)

	info, err := in.InspectTable(context.Background(), "sales", "orders")
	require.NoError(t, err)
	assert.Equal(t, "sales", info.Schema)
	assert.Equal(t, "orders", info.Name)
	require.Len(t, info.Columns, 2)
	assert.True(t, sqltype.Integer(8).Equal(info.Columns[0].Type))
	assert.Equal(t, "getdate()", *info.Columns[1].DefaultFunction)

	assert.Equal(t, []any{`"sales"."orders"`}, db.Queries[len(db.Queries)-1].Args)
}

func TestIntrospector_InspectTableMissing(t *testing.T) {
	in, _ := newIntrospector(t)

	_, err := in.InspectTable(context.Background(), "sales", "refunds")
	assert.True(t, errs.IsSchemaLookup(err))
}

func TestIntrospector_InspectSchema(t *testing.T) {
	in, _ := newIntrospector(t)

	info, err := in.InspectSchema(context.Background(), "sales")
	require.NoError(t, err)

	_, err = uuid.Parse(info.ID)
	assert.NoError(t, err)
	assert.Equal(t, "redshift", info.Adapter)
	assert.Equal(t, "sales", info.Schema)
	assert.WithinDuration(t, time.Now(), info.TakenAt, time.Minute)
	require.Len(t, info.Tables, 2)

	customers := info.Table("customers")
	require.NotNil(t, customers)
	assert.True(t, sqltype.String(sqltype.Int(256)).Equal(customers.Columns[1].Type))
	assert.Nil(t, info.Table("refunds"))
}
