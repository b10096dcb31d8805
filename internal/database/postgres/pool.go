package postgres

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/koustreak/rsadapter/internal/database"
	"github.com/koustreak/rsadapter/internal/errs"
	"github.com/koustreak/rsadapter/internal/logger"
)

const (
	defaultMaxConns = 10
	defaultMinConns = 2
	defaultPort     = 5439
)

// libpq keys pgx does not understand. Left in place they would be sent to the
// server as runtime parameters and rejected.
var unsupportedKeys = map[string]bool{
	"keepalives":          true,
	"keepalives_idle":     true,
	"keepalives_interval": true,
	"keepalives_count":    true,
	"tty":                 true,
	"requirepeer":         true,
	"gsslib":              true,
	"sslcompression":      true,
	"sslcrl":              true,
}

// buildPoolConfig creates a pgxpool config from the adapter config and the
// dialect-filtered connection params.
func buildPoolConfig(cfg *database.Config, params map[string]any, log *logger.Logger) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(connString(params, log))
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid connection params", err)
	}

	// Apply pool settings with defaults
	poolCfg.MaxConns = withDefault(cfg.Pool.MaxConns, defaultMaxConns)
	poolCfg.MinConns = withDefault(cfg.Pool.MinConns, defaultMinConns)
	if cfg.Pool.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.Pool.MaxConnLifetime
	}
	if cfg.Pool.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.Pool.MaxConnIdleTime
	}
	if _, set := params["connect_timeout"]; !set && cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	if cfg.SimpleProtocol {
		poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}

	return poolCfg, nil
}

// connString renders params as a keyword/value connection string, rewriting
// or dropping the libpq-only keys pgx cannot take.
func connString(params map[string]any, log *logger.Logger) string {
	kv := make(map[string]string, len(params)+1)
	for k, v := range params {
		if v == nil {
			continue
		}
		kv[k] = fmt.Sprint(v)
	}

	if addr, ok := kv["hostaddr"]; ok {
		if _, hasHost := kv["host"]; !hasHost {
			kv["host"] = addr
		}
		delete(kv, "hostaddr")
	}
	if fallback, ok := kv["fallback_application_name"]; ok {
		if _, hasName := kv["application_name"]; !hasName {
			kv["application_name"] = fallback
		}
		delete(kv, "fallback_application_name")
	}
	if req, ok := kv["requiressl"]; ok {
		if _, hasMode := kv["sslmode"]; !hasMode && (req == "1" || req == "true") {
			kv["sslmode"] = "require"
		}
		delete(kv, "requiressl")
	}
	if _, ok := kv["port"]; !ok {
		kv["port"] = fmt.Sprint(defaultPort)
	}

	keys := make([]string, 0, len(kv))
	for k := range kv {
		if unsupportedKeys[k] {
			log.Debugf("dropping unsupported connection param %q", k)
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + quoteValue(kv[k])
	}
	return strings.Join(parts, " ")
}

// quoteValue escapes a value for a keyword/value connection string.
func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// withDefault returns val if non-zero, otherwise returns def
func withDefault(val, def int32) int32 {
	if val == 0 {
		return def
	}
	return val
}
