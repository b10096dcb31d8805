package database

import "time"

// PoolConfig tunes the transport's connection pool.
type PoolConfig struct {
	MaxConns        int32         `yaml:"max_conns"`         // maximum number of connections in the pool
	MinConns        int32         `yaml:"min_conns"`         // minimum number of idle connections kept alive
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"` // maximum time a connection may be reused
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
}

// Config holds all settings needed to open an adapter.
type Config struct {
	// Adapter is the registered dialect name, e.g. "redshift".
	Adapter string `yaml:"adapter"`

	// Params is the free-form connection mapping: transport keys such as
	// host, port, username, database, plus session keys such as encoding,
	// schema_search_path and variables. Dialects filter it before use.
	Params map[string]any `yaml:"params"`

	Pool PoolConfig `yaml:"pool"`

	// Timeouts
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	QueryTimeout   time.Duration `yaml:"query_timeout"` // per-statement deadline, zero disables

	// SimpleProtocol sends statements without server-side preparation.
	SimpleProtocol bool `yaml:"simple_protocol"`

	// SchemaCacheTTL bounds how long decoded columns are reused. Zero keeps
	// them until ClearSchemaCache.
	SchemaCacheTTL time.Duration `yaml:"schema_cache_ttl"`
}

// DefaultConfig returns production-ready pool settings for the given adapter.
func DefaultConfig(adapter string) *Config {
	return &Config{
		Adapter: adapter,
		Params:  map[string]any{},
		Pool: PoolConfig{
			MaxConns:        10,
			MinConns:        2,
			MaxConnLifetime: 30 * time.Minute,
			MaxConnIdleTime: 5 * time.Minute,
		},
		ConnectTimeout: 10 * time.Second,
		QueryTimeout:   60 * time.Second,
		SchemaCacheTTL: 10 * time.Minute,
	}
}
