package redshift

import (
	"context"
	"testing"

	"github.com/koustreak/rsadapter/internal/database"
	"github.com/koustreak/rsadapter/internal/database/dbtest"
	"github.com/koustreak/rsadapter/internal/errs"
	"github.com/koustreak/rsadapter/internal/sqltype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, db *dbtest.DB) *Adapter {
	t.Helper()
	a, err := New(db, database.DefaultConfig(AdapterName), nil)
	require.NoError(t, err)
	return a
}

func TestAdapter_Registered(t *testing.T) {
	assert.True(t, database.IsRegistered("redshift"))
	assert.True(t, database.IsRegistered("Redshift"))
}

func TestAdapter_Columns(t *testing.T) {
	db := dbtest.New(dbtest.Result{
		Columns: catalogColumns,
		Rows: [][]any{
			{"id", "integer", strPtr(`"identity"(100, 0, '1,1'::text)`), true, uint32(23), int32Ptr(-1)},
			{"total", "numeric(18,0)", nil, false, uint32(1700), packModifier(18, 0)},
			{"price", "numeric(10,2)", strPtr("0.00"), false, uint32(1700), packModifier(10, 2)},
			{"sku", "character varying(32)", strPtr("'none'::character varying"), true, uint32(1043), int32Ptr(36)},
			{"created_at", "timestamp without time zone", strPtr("getdate()"), false, uint32(1114), int32Ptr(-1)},
		},
	})
	a := newTestAdapter(t, db)

	cols, err := a.Columns(context.Background(), "sales.orders")
	require.NoError(t, err)
	require.Len(t, cols, 5)

	assert.Contains(t, db.Queries[0].SQL, `'"sales"."orders"'::regclass`)

	assert.True(t, sqltype.Integer(4).Equal(cols[0].Type))
	assert.False(t, cols[0].Null)
	require.NotNil(t, cols[0].DefaultFunction)

	assert.True(t, sqltype.DecimalWithoutScale(sqltype.Int(18)).Equal(cols[1].Type))
	assert.True(t, sqltype.Decimal(sqltype.Int(10), sqltype.Int(2)).Equal(cols[2].Type))
	assert.Equal(t, "0.00", *cols[2].Default)

	assert.True(t, sqltype.String(sqltype.Int(32)).Equal(cols[3].Type))
	assert.Equal(t, "none", *cols[3].Default)

	assert.True(t, sqltype.DateTime(nil).Equal(cols[4].Type))
	assert.Equal(t, "getdate()", *cols[4].DefaultFunction)

	_, err = a.Columns(context.Background(), "sales.orders")
	require.NoError(t, err)
	assert.Len(t, db.Queries, 1, "second call served from the schema cache")
}

func TestAdapter_ColumnsUnknownType(t *testing.T) {
	db := dbtest.New(dbtest.Result{
		Columns: catalogColumns,
		Rows:    [][]any{{"payload", "super", nil, false, uint32(4000), nil}},
	})
	a := newTestAdapter(t, db)

	_, err := a.Columns(context.Background(), "events")
	assert.True(t, errs.IsTypeDecode(err))
}

func TestAdapter_ColumnsMissingTable(t *testing.T) {
	db := dbtest.New(dbtest.Result{Err: errs.WithCode(errs.ErrKindQueryFailed, "query failed", "42P01", nil)})
	a := newTestAdapter(t, db)

	_, err := a.Columns(context.Background(), "nope")
	assert.True(t, errs.IsSchemaLookup(err))
}

func TestAdapter_Overrides(t *testing.T) {
	db := &dbtest.DB{}
	a := newTestAdapter(t, db)
	ctx := context.Background()

	ran := false
	require.NoError(t, a.DisableReferentialIntegrity(ctx, func(context.Context) error {
		ran = true
		return nil
	}))
	assert.True(t, ran)
	assert.Empty(t, db.Execs)

	_, err := a.Begin(ctx, database.TxOptions{Isolation: database.IsolationSerializable})
	assert.True(t, errs.IsUnsupported(err))

	tx, err := a.Begin(ctx, database.TxOptions{})
	require.NoError(t, err)
	assert.True(t, errs.IsUnsupported(a.Savepoint(ctx, tx, "sp")))

	sql, err := a.InsertSQL("events", []string{"kind"}, "id")
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "events" ("kind") VALUES ($1)`, sql)

	assert.NoError(t, a.RequireVersion(170000))
	assert.Equal(t, "redshift", a.Name())
	assert.Equal(t, database.FeatureSetOf(Capabilities{}), a.FeatureSet())
}

func TestAdapter_DDL(t *testing.T) {
	a := newTestAdapter(t, &dbtest.DB{})

	sql, err := a.CreateTableSQL("events", []database.ColumnDef{
		{Name: "id", Kind: database.KindPrimaryKey},
		{Name: "kind", Kind: database.KindString, Options: database.TypeOptions{Limit: sqltype.Int(32)}, NotNull: true},
		{Name: "body", Kind: database.KindText},
		{Name: "amount", Kind: database.KindDecimal, Options: database.TypeOptions{Precision: sqltype.Int(12), Scale: sqltype.Int(2)}},
		{Name: "at", Kind: database.KindDateTime},
	})
	require.NoError(t, err)
	assert.Equal(t,
		`CREATE TABLE "events" ("id" integer identity(1,1) primary key, "kind" varchar(32) NOT NULL, "body" varchar(max), "amount" decimal(12,2), "at" timestamp)`,
		sql)
}
