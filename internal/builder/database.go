package builder

import (
	"context"
	"fmt"

	"github.com/futig/planner-backend/internal/config"
	"github.com/futig/planner-backend/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// setupDatabase creates a new database connection pool
func setupDatabase(ctx context.Context, cfg config.KnowledgeBaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MinConns = int32(cfg.DBMinConns)
	poolConfig.MaxConnLifetime = cfg.DBMaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.DBMaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.DBHealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connection pool established",
		zap.Int32("max_conns", poolConfig.MaxConns),
		zap.Int32("min_conns", poolConfig.MinConns),
		zap.Duration("max_conn_lifetime", poolConfig.MaxConnLifetime),
		zap.Duration("max_conn_idle_time", poolConfig.MaxConnIdleTime),
		zap.Duration("health_check_period", poolConfig.HealthCheckPeriod),
	)

	return pool, nil
}

// setupVectorStore opens the configured chunk store. The returned pool is
// non-nil only for the postgres backend.
func setupVectorStore(ctx context.Context, cfg config.KnowledgeBaseConfig, logger *zap.Logger) (repository.VectorStore, *pgxpool.Pool, error) {
	switch cfg.Backend {
	case config.KnowledgeBackendMemory:
		logger.Warn("Using in-memory knowledge base, indexed chunks are lost on restart")
		return repository.NewMemoryStore(), nil, nil

	case config.KnowledgeBackendPostgres:
		db, err := setupDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("setup database: %w", err)
		}

		logger.Info("Running database migrations")
		if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("Database migrations completed successfully")

		return repository.NewPostgresStore(db), db, nil

	default:
		store, err := repository.NewSQLiteStore(ctx, cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite knowledge base: %w", err)
		}

		n, err := store.Count(ctx)
		if err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("count stored chunks: %w", err)
		}
		logger.Info("sqlite knowledge base opened", zap.String("path", cfg.Path), zap.Int("chunks", n))

		return store, nil, nil
	}
}
