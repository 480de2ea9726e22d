package persistence

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/repository"
	"github.com/spec-kit/grievance-service/internal/repository/memory"
	"github.com/spec-kit/grievance-service/internal/repository/mongostore"
)

// Backend is the opened store selected by STORE_DRIVER.
type Backend struct {
	Driver   string
	Store    repository.Store
	Postgres *Postgres
	Mongo    *Mongo
}

// OpenBackend connects the configured store and prepares its schema.
func OpenBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Backend, error) {
	backend := &Backend{Driver: cfg.Store.Driver}

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		pool := pg.PoolHandle()
		backend.Postgres = pg
		backend.Store = repository.Store{
			Grievances:  repository.NewGrievanceRepository(pool),
			Departments: repository.NewDepartmentRepository(pool),
			Users:       repository.NewUserRepository(pool),
		}
	case config.StoreDriverMongo:
		m, err := NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		if err := mongostore.EnsureIndexes(ctx, m.Database); err != nil {
			m.Close(context.Background())
			return nil, err
		}
		backend.Mongo = m
		backend.Store = mongostore.NewStore(m.Database)
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		backend.Store = memory.NewStore()
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}

	return backend, nil
}

// Ping checks the underlying database, if any.
func (b *Backend) Ping(ctx context.Context) error {
	switch {
	case b.Postgres != nil:
		return b.Postgres.Ping(ctx)
	case b.Mongo != nil:
		return b.Mongo.Ping(ctx)
	}
	return nil
}

// Close releases database connections.
func (b *Backend) Close() {
	if b == nil {
		return
	}
	b.Postgres.Close()
	if b.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		b.Mongo.Close(ctx)
	}
}
