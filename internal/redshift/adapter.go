// Package redshift adapts the generic relational layer to Amazon Redshift:
// capability answers, catalog introspection, type decoding and session setup.
package redshift

import (
	"context"

	"github.com/koustreak/rsadapter/internal/database"
	"github.com/koustreak/rsadapter/internal/database/postgres"
	"github.com/koustreak/rsadapter/internal/logger"
)

// AdapterName is the registry key.
const AdapterName = "redshift"

func init() {
	database.Register(AdapterName, func(ctx context.Context, cfg *database.Config, log *logger.Logger) (*database.Adapter, error) {
		a, err := Open(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return a.Adapter, nil
	})
}

// Adapter is the Redshift dialect. Operations it does not override are
// served by the embedded base adapter.
type Adapter struct {
	*database.Adapter
	Capabilities
	*Catalog
}

var _ database.Dialect = (*Adapter)(nil)

// New builds an Adapter over an already open transport.
func New(db database.DB, cfg *database.Config, log *logger.Logger) (*Adapter, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With().Str("adapter", AdapterName).Logger()

	a := &Adapter{Catalog: NewCatalog(db, log)}
	base, err := database.NewAdapter(db, a,
		database.WithLogger(log),
		database.WithQueryTimeout(cfg.QueryTimeout),
		database.WithSchemaCacheTTL(cfg.SchemaCacheTTL),
	)
	if err != nil {
		return nil, err
	}
	a.Adapter = base
	return a, nil
}

// Open filters cfg.Params, connects with the session hook installed and
// returns a ready Adapter.
func Open(ctx context.Context, cfg *database.Config, log *logger.Logger) (*Adapter, error) {
	if log == nil {
		log = logger.Nop()
	}

	session, err := SessionSettingsFromConfig(cfg.Params)
	if err != nil {
		return nil, err
	}

	db, err := postgres.Open(ctx, cfg, ConnectionParams(cfg.Params), session.ConfigureConnection, log)
	if err != nil {
		return nil, err
	}

	a, err := New(db, cfg, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

// Name identifies the dialect.
func (a *Adapter) Name() string { return AdapterName }
