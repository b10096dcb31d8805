package redshift

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/koustreak/rsadapter/internal/database"
	"github.com/koustreak/rsadapter/internal/errs"
)

// defaultSentinel is the type of DefaultValue.
type defaultSentinel struct{}

// DefaultValue as a session variable value resets the variable to the
// server default. The string ":default" does the same.
var DefaultValue = defaultSentinel{}

// transportKeys are the connection params forwarded to the transport.
var transportKeys = map[string]bool{
	"host": true, "hostaddr": true, "port": true, "dbname": true, "user": true,
	"password": true, "connect_timeout": true, "client_encoding": true,
	"options": true, "application_name": true, "fallback_application_name": true,
	"keepalives": true, "keepalives_idle": true, "keepalives_interval": true,
	"keepalives_count": true, "tty": true, "sslmode": true, "requiressl": true,
	"sslcompression": true, "sslcert": true, "sslkey": true, "sslrootcert": true,
	"sslcrl": true, "requirepeer": true, "krbsrvname": true, "gsslib": true,
	"service": true,
}

var renamedKeys = map[string]string{
	"username": "user",
	"database": "dbname",
}

// ConnectionParams filters a connection mapping down to transport keys.
// nil values are dropped and username/database become user/dbname,
// overriding a literal user/dbname when both are present.
func ConnectionParams(config map[string]any) map[string]any {
	out := make(map[string]any, len(config))
	for k, v := range config {
		if v == nil || renamedKeys[k] != "" {
			continue
		}
		if transportKeys[k] {
			out[k] = v
		}
	}
	for from, to := range renamedKeys {
		if v, ok := config[from]; ok && v != nil {
			out[to] = v
		}
	}
	return out
}

// SessionSettings is applied to every new physical connection.
type SessionSettings struct {
	Encoding   string
	SearchPath string
	Variables  map[string]any
}

// SessionSettingsFromConfig reads encoding, schema_search_path (or its
// older name schema_order) and variables from a connection mapping.
func SessionSettingsFromConfig(config map[string]any) (SessionSettings, error) {
	var s SessionSettings

	if v, ok := config["encoding"]; ok && v != nil {
		s.Encoding = fmt.Sprint(v)
	}

	for _, key := range []string{"schema_search_path", "schema_order"} {
		v, ok := config[key]
		if !ok || v == nil {
			continue
		}
		path, err := searchPath(v)
		if err != nil {
			return SessionSettings{}, err
		}
		s.SearchPath = path
		break
	}

	switch vars := config["variables"].(type) {
	case nil:
	case map[string]any:
		s.Variables = vars
	case map[string]string:
		s.Variables = make(map[string]any, len(vars))
		for k, v := range vars {
			s.Variables[k] = v
		}
	default:
		return SessionSettings{}, errs.Newf(errs.ErrKindInvalidInput, "variables must be a mapping, got %T", vars)
	}

	return s, nil
}

// searchPath accepts "a,b" or a list of schema names.
func searchPath(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []string:
		return strings.Join(x, ","), nil
	case []any:
		parts := make([]string, len(x))
		for i, p := range x {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, ","), nil
	}
	return "", errs.Newf(errs.ErrKindInvalidInput, "schema search path must be a string or list, got %T", v)
}

// ConfigureConnection issues the session statements on conn: encoding,
// then search_path, then one SET SESSION per variable in name order.
func (s SessionSettings) ConfigureConnection(ctx context.Context, conn database.Execer) error {
	if s.Encoding != "" {
		if err := conn.Exec(ctx, "SET client_encoding TO "+database.Quote(s.Encoding)); err != nil {
			return err
		}
	}
	if s.SearchPath != "" {
		if err := conn.Exec(ctx, "SET search_path TO "+s.SearchPath); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(s.Variables))
	for name := range s.Variables {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := s.Variables[name]
		if value == nil {
			continue
		}
		var stmt string
		if isDefault(value) {
			stmt = fmt.Sprintf("SET SESSION %s TO DEFAULT", name)
		} else {
			stmt = fmt.Sprintf("SET SESSION %s TO %s", name, database.Quote(value))
		}
		if err := conn.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func isDefault(v any) bool {
	switch x := v.(type) {
	case defaultSentinel:
		return true
	case string:
		return x == ":default"
	}
	return false
}
