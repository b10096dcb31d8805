package database

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestQuoteTableName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"users", `"users"`},
		{"analytics.events", `"analytics"."events"`},
		{`"My.Schema".t`, `"My.Schema"."t"`},
		{`"already"`, `"already"`},
		{`we"ird`, `"we""ird"`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, QuoteTableName(tt.in))
		})
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "NULL"},
		{"string", "O'Reilly", "'O''Reilly'"},
		{"bool", true, "TRUE"},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"float", 1.5, "1.5"},
		{"nan", math.NaN(), "'NaN'"},
		{"infinity", math.Inf(-1), "'-Infinity'"},
		{"decimal", decimal.RequireFromString("12.50"), "12.5"},
		{"bytes", []byte{0xde, 0xad}, `'\xdead'`},
		{"time", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "'2024-01-02T03:04:05Z'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Quote(tt.in))
		})
	}
}
