package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	appconfig "github.com/whrealtors/realty-web/internal/config"
	"github.com/whrealtors/realty-web/internal/leads"
	"github.com/whrealtors/realty-web/pkg/logging"
)

// Lead store kinds accepted in LEADS_STORE.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// BuildLeadRepository opens the configured lead store. The returned close
// func releases the underlying connection and is never nil.
func BuildLeadRepository(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (leads.Repository, func(), error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	switch cfg.LeadsStore {
	case "", StoreMemory:
		logger.Warn("using in-memory lead store; leads are lost on restart")
		return leads.NewInMemoryRepository(), func() {}, nil
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("bootstrap: DATABASE_URL is required for the postgres store")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
		}
		logger.Info("lead store ready", "store", StorePostgres)
		return leads.NewPostgresRepository(pool), pool.Close, nil
	case StoreSQLite:
		db, err := leads.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: %w", err)
		}
		logger.Info("lead store ready", "store", StoreSQLite, "path", cfg.SQLitePath)
		return leads.NewSQLiteRepository(db), func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown lead store %q", cfg.LeadsStore)
	}
}
