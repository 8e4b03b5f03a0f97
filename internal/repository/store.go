package repository

import (
	"context"
	"fmt"
	"log/slog"

	"storyloom/internal/config"
	"storyloom/internal/domain/repositories"
	docsysRepo "storyloom/internal/domain/repositories/docsystem"
	"storyloom/internal/repository/mongodb"
	"storyloom/internal/repository/postgres"
	postgresDocsys "storyloom/internal/repository/postgres/docsystem"
)

// Store is the document store handle: repositories for one backend plus its lifecycle.
// Construct it once in main and inject it; call Close on shutdown.
type Store struct {
	Backend  string
	Projects docsysRepo.ProjectRepository
	Styles   repositories.StyleRepository
	Users    repositories.UserRepository
	Tx       repositories.TransactionManager

	ping  func(ctx context.Context) error
	reset func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Open connects to the backend selected by cfg.StoreBackend and ensures its schema
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		return openPostgres(ctx, cfg, logger)
	case config.StoreMongo:
		return openMongo(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		pool.Close()
		return nil, err
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}

	logger.Info("document store ready", "backend", config.StorePostgres, "table_prefix", cfg.TablePrefix)

	return &Store{
		Backend:  config.StorePostgres,
		Projects: postgresDocsys.NewProjectRepository(repoConfig),
		Styles:   postgres.NewStyleRepository(repoConfig),
		Users:    postgres.NewUserRepository(repoConfig),
		Tx:       postgres.NewTransactionManager(repoConfig),
		ping:     pool.Ping,
		reset: func(ctx context.Context) error {
			if err := postgres.DropSchema(ctx, pool, tables); err != nil {
				return err
			}
			return postgres.EnsureSchema(ctx, pool, tables)
		},
		close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	client, err := mongodb.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}

	db := client.Database(cfg.MongoDatabase)
	names := mongodb.NewCollectionNames(cfg.TablePrefix)
	if err := mongodb.EnsureIndexes(ctx, db, names); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	repoConfig := &mongodb.RepositoryConfig{
		DB:          db,
		Collections: names,
		Logger:      logger,
	}

	logger.Info("document store ready", "backend", config.StoreMongo, "database", cfg.MongoDatabase)

	return &Store{
		Backend:  config.StoreMongo,
		Projects: mongodb.NewProjectRepository(repoConfig),
		Styles:   mongodb.NewStyleRepository(repoConfig),
		Users:    mongodb.NewUserRepository(repoConfig),
		Tx:       mongodb.NewTransactionManager(),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		reset: func(ctx context.Context) error {
			if err := mongodb.DropCollections(ctx, db, names); err != nil {
				return err
			}
			return mongodb.EnsureIndexes(ctx, db, names)
		},
		close: client.Disconnect,
	}, nil
}

// Ping checks the backend is reachable
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Reset drops every table or collection for the configured prefix and recreates
// the schema. Only the seed tool calls this.
func (s *Store) Reset(ctx context.Context) error {
	if s.reset == nil {
		return nil
	}
	return s.reset(ctx)
}

// Close releases the backend connection
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
