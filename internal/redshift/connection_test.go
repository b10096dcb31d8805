package redshift

import (
	"context"
	"errors"
	"testing"

	"github.com/koustreak/rsadapter/internal/database/dbtest"
	"github.com/koustreak/rsadapter/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionParams(t *testing.T) {
	tests := []struct {
		name   string
		config map[string]any
		want   map[string]any
	}{
		{
			name:   "renames and drops",
			config: map[string]any{"username": "u", "database": "d", "some_unknown_key": 1, "password": nil},
			want:   map[string]any{"user": "u", "dbname": "d"},
		},
		{
			name: "transport keys survive, session keys do not",
			config: map[string]any{
				"host": "cluster.example.com", "port": 5439, "sslmode": "require",
				"encoding": "utf8", "schema_search_path": "public", "variables": map[string]any{"a": 1},
				"adapter": "redshift", "keepalives_idle": 30,
			},
			want: map[string]any{"host": "cluster.example.com", "port": 5439, "sslmode": "require", "keepalives_idle": 30},
		},
		{
			name:   "renamed keys win over literal ones",
			config: map[string]any{"user": "plain", "username": "renamed", "dbname": "plain_db", "database": "renamed_db"},
			want:   map[string]any{"user": "renamed", "dbname": "renamed_db"},
		},
		{
			name:   "nil renamed key keeps the literal one",
			config: map[string]any{"user": "plain", "username": nil},
			want:   map[string]any{"user": "plain"},
		},
		{
			name:   "empty",
			config: map[string]any{},
			want:   map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Map iteration order varies between calls.
			for i := 0; i < 50; i++ {
				assert.Equal(t, tt.want, ConnectionParams(tt.config))
			}
		})
	}
}

func TestSessionSettingsFromConfig(t *testing.T) {
	s, err := SessionSettingsFromConfig(map[string]any{
		"encoding":     "UTF8",
		"schema_order": []any{"analytics", "public"},
		"variables":    map[string]string{"statement_timeout": "5min"},
	})
	require.NoError(t, err)
	assert.Equal(t, "UTF8", s.Encoding)
	assert.Equal(t, "analytics,public", s.SearchPath)
	assert.Equal(t, map[string]any{"statement_timeout": "5min"}, s.Variables)

	s, err = SessionSettingsFromConfig(map[string]any{
		"schema_search_path": "a,b",
		"schema_order":       "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, "a,b", s.SearchPath)

	_, err = SessionSettingsFromConfig(map[string]any{"variables": []string{"x"}})
	assert.True(t, errs.IsInvalidInput(err))

	_, err = SessionSettingsFromConfig(map[string]any{"schema_search_path": 42})
	assert.True(t, errs.IsInvalidInput(err))
}

func TestConfigureConnection(t *testing.T) {
	s := SessionSettings{
		Encoding:   "UTF8",
		SearchPath: "analytics,public",
		Variables: map[string]any{
			"wlm_query_slot_count": 2,
			"query_group":          "etl's",
			"statement_timeout":    ":default",
			"datestyle":            DefaultValue,
			"search_path_hint":     nil,
		},
	}
	conn := &dbtest.DB{}

	require.NoError(t, s.ConfigureConnection(context.Background(), conn))
	assert.Equal(t, []string{
		"SET client_encoding TO 'UTF8'",
		"SET search_path TO analytics,public",
		"SET SESSION datestyle TO DEFAULT",
		"SET SESSION query_group TO 'etl''s'",
		"SET SESSION statement_timeout TO DEFAULT",
		"SET SESSION wlm_query_slot_count TO 2",
	}, conn.ExecSQL())
}

func TestConfigureConnection_Empty(t *testing.T) {
	conn := &dbtest.DB{}
	require.NoError(t, SessionSettings{}.ConfigureConnection(context.Background(), conn))
	assert.Empty(t, conn.Execs)
}

func TestConfigureConnection_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	conn := &dbtest.DB{ExecErr: boom}

	err := SessionSettings{Encoding: "UTF8", SearchPath: "public"}.ConfigureConnection(context.Background(), conn)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, conn.Execs, 1)
}
