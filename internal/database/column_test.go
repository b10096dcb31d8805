package database

import (
	"testing"

	"github.com/koustreak/rsadapter/internal/errs"
	"github.com/koustreak/rsadapter/internal/sqltype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestExtractDefault(t *testing.T) {
	tests := []struct {
		expr         string
		wantValue    *string
		wantFunction *string
	}{
		{"'foo'::character varying", strPtr("foo"), nil},
		{"'it''s'::text", strPtr("it's"), nil},
		{"('now'::text)::timestamp without time zone", strPtr("now"), nil},
		{"true", strPtr("true"), nil},
		{"false", strPtr("false"), nil},
		{"42", strPtr("42"), nil},
		{"-3.25", strPtr("-3.25"), nil},
		{"(-1)", strPtr("-1"), nil},
		{"7::bigint", strPtr("7"), nil},
		{"NULL::character varying", nil, nil},
		{"getdate()", nil, strPtr("getdate()")},
		{`"identity"(108212, 0, '1,1'::text)`, nil, strPtr(`"identity"(108212, 0, '1,1'::text)`)},
		{"some_enum_value", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			value, function := extractDefault(tt.expr)
			assert.Equal(t, tt.wantValue, value)
			assert.Equal(t, tt.wantFunction, function)
		})
	}
}

func TestBuildColumn(t *testing.T) {
	m := buildTestMap(t)
	fmod := int32(-1)

	col, err := BuildColumn(ColumnDescriptor{
		Name:              "id",
		FormattedType:     "integer",
		DefaultExpression: strPtr(`"identity"(1, 0, '1,1'::text)`),
		NotNull:           true,
		TypeOID:           23,
		TypeModifier:      &fmod,
	}, m)
	require.NoError(t, err)

	assert.Equal(t, "id", col.Name)
	assert.Equal(t, "integer", col.SQLType)
	assert.False(t, col.Null)
	assert.Nil(t, col.Default)
	require.NotNil(t, col.DefaultFunction)
	assert.True(t, col.Type.Equal(sqltype.Integer(4)))
	assert.Equal(t, uint32(23), col.TypeOID)
	assert.Equal(t, &fmod, col.TypeModifier)
}

func TestBuildColumn_UnknownType(t *testing.T) {
	m := buildTestMap(t)

	_, err := BuildColumn(ColumnDescriptor{Name: "shape", FormattedType: "geometry", TypeOID: 3000000}, m)
	require.Error(t, err)
	assert.True(t, errs.IsTypeDecode(err))
	assert.Contains(t, err.Error(), `"shape"`)
}
