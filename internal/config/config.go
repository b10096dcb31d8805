// Package config loads the rsadapter YAML configuration file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"github.com/koustreak/rsadapter/internal/database"
	"github.com/koustreak/rsadapter/internal/errs"
	"github.com/koustreak/rsadapter/internal/filestore"
	"github.com/koustreak/rsadapter/internal/logger"
	"github.com/koustreak/rsadapter/internal/redshift"
	"go.yaml.in/yaml/v3"
)

// Environment overrides applied after the file is parsed.
const (
	EnvPassword = "RSADAPTER_PASSWORD"
	EnvLogLevel = "RSADAPTER_LOG_LEVEL"
)

// Config is the root of the configuration file.
type Config struct {
	Logger   logger.Config    `yaml:"logger"`
	Database database.Config  `yaml:"database"`
	Server   ServerConfig     `yaml:"server"`
	Snapshot filestore.Config `yaml:"snapshot"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns a configuration usable against a local cluster.
func Default() *Config {
	return &Config{
		Logger:   *logger.DefaultConfig(),
		Database: *database.DefaultConfig(redshift.AdapterName),
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Snapshot: *filestore.DefaultConfig("localhost:9000", "", ""),
	}
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads path on top of Default. A .env file in the working directory
// is loaded first when present; ${VAR} references in the file are expanded.
func Load(path string) (*Config, error) {
	if err := loadEnvFile(".env"); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrKindNotFound, "config file not found: "+path, err)
		}
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to read config file", err)
	}

	return Parse(data)
}

// Parse decodes YAML on top of Default and applies environment overrides.
func Parse(data []byte) (*Config, error) {
	expanded := envRef.ReplaceAllStringFunc(string(data), func(m string) string {
		return os.Getenv(m[2 : len(m)-1])
	})

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to parse config", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if pw, ok := os.LookupEnv(EnvPassword); ok {
		if c.Database.Params == nil {
			c.Database.Params = map[string]any{}
		}
		c.Database.Params["password"] = pw
	}
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		c.Logger.Level = lvl
	}
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Database.Adapter == "" {
		return errs.New(errs.ErrKindInvalidInput, "database.adapter is required")
	}
	if !database.IsRegistered(c.Database.Adapter) {
		return errs.Newf(errs.ErrKindInvalidInput, "database.adapter %q is not registered (available: %v)",
			c.Database.Adapter, database.Available())
	}
	if c.Database.Pool.MaxConns > 0 && c.Database.Pool.MinConns > c.Database.Pool.MaxConns {
		return errs.New(errs.ErrKindInvalidInput, "database.pool.min_conns exceeds max_conns")
	}
	if c.Server.Addr == "" {
		return errs.New(errs.ErrKindInvalidInput, "server.addr is required")
	}
	return nil
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errs.Wrap(errs.ErrKindInvalidInput, "failed to load "+path, err)
	}
	return nil
}
