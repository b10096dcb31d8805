package database

import "fmt"

// ColumnKind is an abstract column type used by DDL generation.
type ColumnKind string

const (
	KindPrimaryKey ColumnKind = "primary_key"
	KindString     ColumnKind = "string"
	KindText       ColumnKind = "text"
	KindInteger    ColumnKind = "integer"
	KindFloat      ColumnKind = "float"
	KindDecimal    ColumnKind = "decimal"
	KindDateTime   ColumnKind = "datetime"
	KindTime       ColumnKind = "time"
	KindDate       ColumnKind = "date"
	KindBigInt     ColumnKind = "bigint"
	KindBoolean    ColumnKind = "boolean"
)

// NativeType is the SQL fragment a dialect emits for a ColumnKind.
type NativeType struct {
	Name  string `json:"name"`
	Limit *int   `json:"limit,omitempty"`
}

// SQL renders the fragment, appending the default limit when one is set.
func (n NativeType) SQL() string {
	if n.Limit != nil {
		return fmt.Sprintf("%s(%d)", n.Name, *n.Limit)
	}
	return n.Name
}

// CapabilityProvider answers the feature questions the base adapter asks
// before emitting SQL. Answers must not change over the provider's lifetime.
type CapabilityProvider interface {
	SupportsIndexSortOrder() bool
	SupportsPartialIndex() bool
	SupportsTransactionIsolation() bool
	SupportsJSON() bool
	SupportsExtensions() bool
	SupportsRanges() bool
	SupportsMaterializedViews() bool
	SupportsInsertWithReturning() bool
	SupportsSavepoints() bool
	SupportsDDLTransactions() bool

	// PostgreSQLVersion is compared against minimum-version gates.
	PostgreSQLVersion() int

	// NativeDatabaseTypes returns a fresh mapping on every call.
	NativeDatabaseTypes() map[ColumnKind]NativeType
}

// FeatureSet is a snapshot of a CapabilityProvider, suitable for reporting.
type FeatureSet struct {
	IndexSortOrder       bool `json:"index_sort_order"`
	PartialIndex         bool `json:"partial_index"`
	TransactionIsolation bool `json:"transaction_isolation"`
	JSON                 bool `json:"json"`
	Extensions           bool `json:"extensions"`
	Ranges               bool `json:"ranges"`
	MaterializedViews    bool `json:"materialized_views"`
	InsertWithReturning  bool `json:"insert_with_returning"`
	Savepoints           bool `json:"savepoints"`
	DDLTransactions      bool `json:"ddl_transactions"`
	Version              int  `json:"postgresql_version"`
}

// FeatureSetOf captures every answer of p.
func FeatureSetOf(p CapabilityProvider) FeatureSet {
	return FeatureSet{
		IndexSortOrder:       p.SupportsIndexSortOrder(),
		PartialIndex:         p.SupportsPartialIndex(),
		TransactionIsolation: p.SupportsTransactionIsolation(),
		JSON:                 p.SupportsJSON(),
		Extensions:           p.SupportsExtensions(),
		Ranges:               p.SupportsRanges(),
		MaterializedViews:    p.SupportsMaterializedViews(),
		InsertWithReturning:  p.SupportsInsertWithReturning(),
		Savepoints:           p.SupportsSavepoints(),
		DDLTransactions:      p.SupportsDDLTransactions(),
		Version:              p.PostgreSQLVersion(),
	}
}
