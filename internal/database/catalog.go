package database

import "context"

// ColumnDescriptor is one row of catalog metadata for a table column.
type ColumnDescriptor struct {
	Name              string
	FormattedType     string  // e.g. "numeric(10,2)", "character varying(255)"
	DefaultExpression *string // nil when the column has no default
	NotNull           bool
	TypeOID           uint32
	TypeModifier      *int32 // nil when the catalog reported none
}

// CatalogIntrospector reads column metadata for a table. tableName arrives
// already quoted.
type CatalogIntrospector interface {
	ColumnDefinitions(ctx context.Context, tableName string) ([]ColumnDescriptor, error)
}

// TypeMapInitializer registers a dialect's decoding rules.
type TypeMapInitializer interface {
	InitializeTypeMap(r *TypeRegistry) error
}

// Dialect is everything the base adapter needs from a target database.
type Dialect interface {
	Name() string
	CapabilityProvider
	CatalogIntrospector
	TypeMapInitializer
}

// ReferentialIntegrityHook lets a dialect replace the default behavior of
// Adapter.DisableReferentialIntegrity.
type ReferentialIntegrityHook interface {
	WithoutReferentialIntegrity(ctx context.Context, fn func(context.Context) error) error
}
