package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/koustreak/rsadapter/internal/database"
	"github.com/koustreak/rsadapter/internal/database/dbtest"
	"github.com/koustreak/rsadapter/internal/errs"
	"github.com/koustreak/rsadapter/internal/sqltype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDialect is a minimal dialect whose answers tests can flip.
type testDialect struct {
	version     int
	returning   bool
	isolation   bool
	savepoints  bool
	catalogHits int
	descs       []database.ColumnDescriptor
	catalogErr  error
}

func (d *testDialect) Name() string                       { return "testdb" }
func (d *testDialect) SupportsIndexSortOrder() bool       { return true }
func (d *testDialect) SupportsPartialIndex() bool         { return true }
func (d *testDialect) SupportsTransactionIsolation() bool { return d.isolation }
func (d *testDialect) SupportsJSON() bool                 { return true }
func (d *testDialect) SupportsExtensions() bool           { return false }
func (d *testDialect) SupportsRanges() bool               { return false }
func (d *testDialect) SupportsMaterializedViews() bool    { return true }
func (d *testDialect) SupportsInsertWithReturning() bool  { return d.returning }
func (d *testDialect) SupportsSavepoints() bool           { return d.savepoints }
func (d *testDialect) SupportsDDLTransactions() bool      { return true }
func (d *testDialect) PostgreSQLVersion() int             { return d.version }

func (d *testDialect) NativeDatabaseTypes() map[database.ColumnKind]database.NativeType {
	return map[database.ColumnKind]database.NativeType{
		database.KindPrimaryKey: {Name: "serial primary key"},
		database.KindString:     {Name: "character varying"},
		database.KindText:       {Name: "varchar(max)"},
		database.KindInteger:    {Name: "integer"},
		database.KindDecimal:    {Name: "decimal"},
		database.KindDateTime:   {Name: "timestamp"},
		database.KindBoolean:    {Name: "boolean"},
	}
}

func (d *testDialect) ColumnDefinitions(_ context.Context, _ string) ([]database.ColumnDescriptor, error) {
	d.catalogHits++
	return d.descs, d.catalogErr
}

func (d *testDialect) InitializeTypeMap(r *database.TypeRegistry) error {
	r.Register("int4", database.Static(sqltype.Integer(4)))
	r.Register("numeric", database.Static(sqltype.Decimal(sqltype.Int(10), sqltype.Int(2))))
	r.Register("varchar", database.Static(sqltype.String(nil)))
	r.BindOID(23, "int4")
	r.BindOID(1700, "numeric")
	r.BindOID(1043, "varchar")
	return nil
}

func newAdapter(t *testing.T, d *testDialect, db *dbtest.DB) *database.Adapter {
	t.Helper()
	a, err := database.NewAdapter(db, d)
	require.NoError(t, err)
	return a
}

func TestNewAdapter_VersionGate(t *testing.T) {
	_, err := database.NewAdapter(&dbtest.DB{}, &testDialect{version: 80100})
	require.Error(t, err)
	assert.True(t, errs.IsUnsupported(err))

	a, err := database.NewAdapter(&dbtest.DB{}, &testDialect{version: database.MinimumVersion})
	require.NoError(t, err)
	assert.NoError(t, a.RequireVersion(90000-10000))
	assert.True(t, errs.IsUnsupported(a.RequireVersion(90600)))
}

func TestAdapter_ColumnsCached(t *testing.T) {
	d := &testDialect{
		version: 90000,
		descs: []database.ColumnDescriptor{
			{Name: "id", FormattedType: "integer", NotNull: true, TypeOID: 23},
			{Name: "amount", FormattedType: "numeric(10,2)", TypeOID: 1700},
		},
	}
	a := newAdapter(t, d, &dbtest.DB{})
	ctx := context.Background()

	cols, err := a.Columns(ctx, "public.orders")
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "id", cols[0].Name)
	assert.False(t, cols[0].Null)
	assert.Equal(t, sqltype.KindDecimal, cols[1].Type.Kind)

	_, err = a.Columns(ctx, "public.orders")
	require.NoError(t, err)
	assert.Equal(t, 1, d.catalogHits)

	a.ClearSchemaCache("public.orders")
	_, err = a.Columns(ctx, "public.orders")
	require.NoError(t, err)
	assert.Equal(t, 2, d.catalogHits)

	a.ClearSchemaCache()
	_, err = a.Columns(ctx, "public.orders")
	require.NoError(t, err)
	assert.Equal(t, 3, d.catalogHits)
}

func TestAdapter_ColumnsErrors(t *testing.T) {
	lookup := errs.WithCode(errs.ErrKindSchemaLookup, "no such table", "42P01", nil)
	a := newAdapter(t, &testDialect{version: 90000, catalogErr: lookup}, &dbtest.DB{})

	_, err := a.Columns(context.Background(), "missing")
	assert.True(t, errs.IsSchemaLookup(err))

	b := newAdapter(t, &testDialect{
		version: 90000,
		descs:   []database.ColumnDescriptor{{Name: "g", FormattedType: "geometry", TypeOID: 3000000}},
	}, &dbtest.DB{})
	_, err = b.Columns(context.Background(), "shapes")
	assert.True(t, errs.IsTypeDecode(err))
}

func TestAdapter_TypeToSQL(t *testing.T) {
	a := newAdapter(t, &testDialect{version: 90000}, &dbtest.DB{})

	tests := []struct {
		name string
		kind database.ColumnKind
		opts database.TypeOptions
		want string
	}{
		{"primary key", database.KindPrimaryKey, database.TypeOptions{}, "serial primary key"},
		{"string with limit", database.KindString, database.TypeOptions{Limit: sqltype.Int(64)}, "character varying(64)"},
		{"text ignores limit", database.KindText, database.TypeOptions{Limit: sqltype.Int(64)}, "varchar(max)"},
		{"small integer", database.KindInteger, database.TypeOptions{Limit: sqltype.Int(2)}, "smallint"},
		{"big integer", database.KindInteger, database.TypeOptions{Limit: sqltype.Int(8)}, "bigint"},
		{"decimal", database.KindDecimal, database.TypeOptions{Precision: sqltype.Int(10), Scale: sqltype.Int(2)}, "decimal(10,2)"},
		{"decimal precision only", database.KindDecimal, database.TypeOptions{Precision: sqltype.Int(18)}, "decimal(18)"},
		{"datetime precision", database.KindDateTime, database.TypeOptions{Precision: sqltype.Int(3)}, "timestamp(3)"},
		{"unknown kind passes through", database.ColumnKind("geometry"), database.TypeOptions{}, "geometry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.TypeToSQL(tt.kind, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := a.TypeToSQL(database.KindDecimal, database.TypeOptions{Scale: sqltype.Int(2)})
	assert.True(t, errs.IsInvalidInput(err))
	_, err = a.TypeToSQL(database.KindInteger, database.TypeOptions{Limit: sqltype.Int(16)})
	assert.True(t, errs.IsInvalidInput(err))
}

func TestAdapter_CreateTableSQL(t *testing.T) {
	a := newAdapter(t, &testDialect{version: 90000}, &dbtest.DB{})

	sql, err := a.CreateTableSQL("analytics.events", []database.ColumnDef{
		{Name: "id", Kind: database.KindPrimaryKey},
		{Name: "kind", Kind: database.KindString, Options: database.TypeOptions{Limit: sqltype.Int(32)}, NotNull: true, Default: "view"},
		{Name: "active", Kind: database.KindBoolean, Default: false},
	})
	require.NoError(t, err)
	assert.Equal(t,
		`CREATE TABLE "analytics"."events" ("id" serial primary key, "kind" character varying(32) DEFAULT 'view' NOT NULL, "active" boolean DEFAULT FALSE)`,
		sql)

	_, err = a.CreateTableSQL("empty", nil)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestAdapter_InsertSQL(t *testing.T) {
	with := newAdapter(t, &testDialect{version: 90000, returning: true}, &dbtest.DB{})
	without := newAdapter(t, &testDialect{version: 90000}, &dbtest.DB{})

	sql, err := with.InsertSQL("users", []string{"name", "email"}, "id")
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" ("name", "email") VALUES ($1, $2) RETURNING "id"`, sql)

	sql, err = without.InsertSQL("users", []string{"name", "email"}, "id")
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" ("name", "email") VALUES ($1, $2)`, sql)
}

func TestAdapter_Transactions(t *testing.T) {
	db := &dbtest.DB{}
	a := newAdapter(t, &testDialect{version: 90000}, db)
	ctx := context.Background()

	_, err := a.Begin(ctx, database.TxOptions{Isolation: database.IsolationSerializable})
	assert.True(t, errs.IsUnsupported(err))
	assert.Empty(t, db.Begins)

	tx, err := a.Begin(ctx, database.TxOptions{})
	require.NoError(t, err)
	assert.Len(t, db.Begins, 1)

	err = a.Savepoint(ctx, tx, "sp1")
	assert.True(t, errs.IsUnsupported(err))

	sp := newAdapter(t, &testDialect{version: 90000, savepoints: true, isolation: true}, db)
	require.NoError(t, sp.Savepoint(ctx, tx, "sp1"))
	assert.Equal(t, []string{`SAVEPOINT "sp1"`}, db.ExecSQL())

	_, err = sp.Begin(ctx, database.TxOptions{Isolation: database.IsolationSerializable})
	assert.NoError(t, err)
}

func TestAdapter_DisableReferentialIntegrityDefault(t *testing.T) {
	db := &dbtest.DB{}
	a := newAdapter(t, &testDialect{version: 90000}, db)

	ran := false
	err := a.DisableReferentialIntegrity(context.Background(), func(context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, []string{
		"SET session_replication_role = replica",
		"SET session_replication_role = DEFAULT",
	}, db.ExecSQL())
}

type hookedDialect struct {
	testDialect
	calls int
}

func (d *hookedDialect) WithoutReferentialIntegrity(ctx context.Context, fn func(context.Context) error) error {
	d.calls++
	return fn(ctx)
}

func TestAdapter_DisableReferentialIntegrityHook(t *testing.T) {
	db := &dbtest.DB{}
	d := &hookedDialect{testDialect: testDialect{version: 90000}}
	a, err := database.NewAdapter(db, d)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = a.DisableReferentialIntegrity(context.Background(), func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, d.calls)
	assert.Empty(t, db.Execs)
}

func TestAdapter_List(t *testing.T) {
	db := dbtest.New(dbtest.Result{
		Columns: []string{"id", "amount", "note"},
		Rows: [][]any{
			{int32(1), "12.345", "first"},
			{int32(2), nil, nil},
		},
	})
	d := &testDialect{
		version: 90000,
		descs: []database.ColumnDescriptor{
			{Name: "id", FormattedType: "integer", TypeOID: 23},
			{Name: "amount", FormattedType: "numeric(10,2)", TypeOID: 1700},
		},
	}
	a, err := database.NewAdapter(db, d, database.WithQueryTimeout(time.Second))
	require.NoError(t, err)

	rows, err := a.List(context.Background(), a.Select("orders").Where("id", ">", 0).Limit(10))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, int64(1), rows[0]["id"])
	assert.True(t, decimal.RequireFromString("12.35").Equal(rows[0]["amount"].(decimal.Decimal)))
	assert.Equal(t, "first", rows[0]["note"])
	assert.Nil(t, rows[1]["amount"])

	require.Len(t, db.Queries, 1)
	assert.Equal(t, `SELECT * FROM "orders" WHERE "id" > $1 LIMIT 10`, db.Queries[0].SQL)
	assert.Equal(t, []any{0}, db.Queries[0].Args)

	_, err = a.List(context.Background(), a.Select("orders").Where("missing", "=", 1))
	assert.True(t, errs.IsInvalidInput(err))
	assert.Len(t, db.Queries, 1, "unknown columns are rejected before querying")
}

func TestAdapter_FeatureSet(t *testing.T) {
	a := newAdapter(t, &testDialect{version: 90000, returning: true}, &dbtest.DB{})

	fs := a.FeatureSet()
	assert.True(t, fs.InsertWithReturning)
	assert.False(t, fs.Savepoints)
	assert.Equal(t, 90000, fs.Version)
	assert.Equal(t, "testdb", a.Name())
	assert.Contains(t, a.NativeTypes(), database.KindBoolean)
}
