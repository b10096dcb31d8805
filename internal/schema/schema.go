// Package schema reads whole schemas through an adapter and keeps
// point-in-time snapshots of them in object storage.
package schema

import "context"

// Reader is the interface for introspecting a database schema
type Reader interface {
	// ListTables returns all user tables in the given schema (e.g. "public")
	ListTables(ctx context.Context, schema string) ([]string, error)

	// TableExists checks whether a table exists
	TableExists(ctx context.Context, schema, table string) (bool, error)

	// InspectTable returns the decoded columns of a table
	InspectTable(ctx context.Context, schema, table string) (*TableInfo, error)

	// InspectSchema returns every table of the schema with its columns
	InspectSchema(ctx context.Context, schema string) (*SchemaInfo, error)
}
