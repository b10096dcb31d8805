package redshift

import (
	"context"
	"math"

	"github.com/koustreak/rsadapter/internal/database"
)

// Capabilities answers the base adapter's feature questions for Redshift.
// The zero value is ready to use and every answer is fixed.
type Capabilities struct{}

var _ database.CapabilityProvider = Capabilities{}

// The Supports answers below are all false: Redshift has none of these
// features, so the base adapter skips the matching SQL paths.
func (Capabilities) SupportsIndexSortOrder() bool       { return false }
func (Capabilities) SupportsPartialIndex() bool         { return false }
func (Capabilities) SupportsTransactionIsolation() bool { return false }
func (Capabilities) SupportsJSON() bool                 { return false }
func (Capabilities) SupportsExtensions() bool           { return false }
func (Capabilities) SupportsRanges() bool               { return false }
func (Capabilities) SupportsMaterializedViews() bool    { return false }
func (Capabilities) SupportsInsertWithReturning() bool  { return false }
func (Capabilities) SupportsSavepoints() bool           { return false }

// SupportsDDLTransactions is true: DDL runs inside transaction blocks.
func (Capabilities) SupportsDDLTransactions() bool { return true }

// PostgreSQLVersion reports the largest representable version so every
// minimum-version gate in the base adapter passes. Features Redshift lacks
// are switched off through the Supports answers instead.
func (Capabilities) PostgreSQLVersion() int { return math.MaxInt }

// NativeDatabaseTypes returns the DDL fragment for every column kind.
// Each call builds a new map.
func (Capabilities) NativeDatabaseTypes() map[database.ColumnKind]database.NativeType {
	return map[database.ColumnKind]database.NativeType{
		database.KindPrimaryKey: {Name: "integer identity(1,1) primary key"},
		database.KindString:     {Name: "varchar"},
		database.KindText:       {Name: "varchar(max)"},
		database.KindInteger:    {Name: "integer"},
		database.KindFloat:      {Name: "float"},
		database.KindDecimal:    {Name: "decimal"},
		database.KindDateTime:   {Name: "timestamp"},
		database.KindTime:       {Name: "time"},
		database.KindDate:       {Name: "date"},
		database.KindBigInt:     {Name: "bigint"},
		database.KindBoolean:    {Name: "boolean"},
	}
}

// WithoutReferentialIntegrity runs fn unchanged. Redshift does not enforce
// foreign keys, so there is nothing to switch off.
func (a *Adapter) WithoutReferentialIntegrity(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
