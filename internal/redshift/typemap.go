package redshift

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/koustreak/rsadapter/internal/database"
	"github.com/koustreak/rsadapter/internal/sqltype"
)

// typeOIDs binds every registered key to the catalog id Redshift reports.
var typeOIDs = map[string]uint32{
	"int2":        pgtype.Int2OID,
	"int4":        pgtype.Int4OID,
	"int8":        pgtype.Int8OID,
	"oid":         pgtype.OIDOID,
	"float4":      pgtype.Float4OID,
	"float8":      pgtype.Float8OID,
	"text":        pgtype.TextOID,
	"varchar":     pgtype.VarcharOID,
	"char":        pgtype.QCharOID,
	"name":        pgtype.NameOID,
	"bpchar":      pgtype.BPCharOID,
	"bool":        pgtype.BoolOID,
	"date":        pgtype.DateOID,
	"time":        pgtype.TimeOID,
	"timestamp":   pgtype.TimestampOID,
	"timestamptz": pgtype.TimestamptzOID,
	"numeric":     pgtype.NumericOID,
}

// InitializeTypeMap registers the Redshift decoding rules on r.
func InitializeTypeMap(r *database.TypeRegistry) error {
	r.Register("int2", database.Static(sqltype.Integer(2)))
	r.Register("int4", database.Static(sqltype.Integer(4)))
	r.Register("int8", database.Static(sqltype.Integer(8)))
	r.Alias("oid", "int2")

	r.Register("float4", database.Static(sqltype.Float()))
	r.Alias("float8", "float4")

	r.Register("text", database.Static(sqltype.Text()))
	r.Register("varchar", func(_ *int32, sqlType string) (sqltype.Type, error) {
		return sqltype.String(extractLimit(sqlType)), nil
	})
	r.Alias("char", "varchar")
	r.Alias("name", "varchar")
	r.Alias("bpchar", "varchar")

	r.Register("bool", database.Static(sqltype.Boolean()))
	r.Register("date", database.Static(sqltype.Date()))
	r.Register("time", database.Static(sqltype.Time()))

	r.Register("timestamp", func(_ *int32, sqlType string) (sqltype.Type, error) {
		return sqltype.DateTime(extractPrecision(sqlType)), nil
	})
	r.Alias("timestamptz", "timestamp")

	r.Register("numeric", decodeNumeric)

	for name, oid := range typeOIDs {
		r.BindOID(oid, name)
	}
	return nil
}

// InitializeTypeMap satisfies database.TypeMapInitializer.
func (a *Adapter) InitializeTypeMap(r *database.TypeRegistry) error {
	return InitializeTypeMap(r)
}
