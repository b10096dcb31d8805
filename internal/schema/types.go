package schema

import (
	"time"

	"github.com/koustreak/rsadapter/internal/database"
)

// TableInfo describes a table and its columns
type TableInfo struct {
	Schema  string            `json:"schema"`
	Name    string            `json:"name"`
	Columns []database.Column `json:"columns"`
}

// SchemaInfo is a point-in-time view of one database schema
type SchemaInfo struct {
	ID      string      `json:"id"`
	Adapter string      `json:"adapter"`
	Schema  string      `json:"schema"`
	TakenAt time.Time   `json:"taken_at"`
	Tables  []TableInfo `json:"tables"`
}

// Table returns the named table, or nil.
func (s *SchemaInfo) Table(name string) *TableInfo {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}
