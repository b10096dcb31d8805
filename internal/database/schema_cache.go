package database

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// SchemaCache holds decoded columns per table name.
type SchemaCache struct {
	c *cache.Cache
}

// NewSchemaCache creates a cache whose entries expire after ttl.
// A ttl of zero or less keeps entries until invalidated.
func NewSchemaCache(ttl time.Duration) *SchemaCache {
	if ttl <= 0 {
		return &SchemaCache{c: cache.New(cache.NoExpiration, 0)}
	}
	return &SchemaCache{c: cache.New(ttl, 2*ttl)}
}

// Get returns a copy of the cached columns for table.
func (s *SchemaCache) Get(table string) ([]Column, bool) {
	v, ok := s.c.Get(table)
	if !ok {
		return nil, false
	}
	return cloneColumns(v.([]Column)), true
}

// Set stores columns for table using the default expiration.
func (s *SchemaCache) Set(table string, cols []Column) {
	s.c.SetDefault(table, cloneColumns(cols))
}

// Invalidate drops the entry for table.
func (s *SchemaCache) Invalidate(table string) {
	s.c.Delete(table)
}

// Clear drops every entry.
func (s *SchemaCache) Clear() {
	s.c.Flush()
}

// Len reports the number of cached tables, expired entries included.
func (s *SchemaCache) Len() int {
	return s.c.ItemCount()
}

// cloneColumns copies cols including the values behind pointer fields, so
// callers cannot write through to a cached entry.
func cloneColumns(cols []Column) []Column {
	if cols == nil {
		return nil
	}
	out := make([]Column, len(cols))
	for i, c := range cols {
		c.Default = clonePtr(c.Default)
		c.DefaultFunction = clonePtr(c.DefaultFunction)
		c.TypeModifier = clonePtr(c.TypeModifier)
		c.Type.Limit = clonePtr(c.Type.Limit)
		c.Type.Precision = clonePtr(c.Type.Precision)
		c.Type.Scale = clonePtr(c.Type.Scale)
		out[i] = c
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
