package backend

import (
	"context"
	"fmt"
	"time"

	"finfamily/internal/core"
	"finfamily/internal/log"
	"finfamily/internal/storage/file"
	"finfamily/internal/storage/memory"
	"finfamily/internal/storage/mongo"
	"finfamily/internal/storage/postgres"
	"finfamily/internal/storage/rest"
	"finfamily/internal/storage/sqlite"
)

const connectTimeout = 10 * time.Second

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Nop()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend. Remote backends without
// credentials fail with *core.ConfigurationError before any connection is
// attempted.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend()
	case FileBackend:
		return f.createFileBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case PostgresBackend:
		return f.createPostgresBackend(config)
	case RESTBackend:
		return f.createRESTBackend(config)
	case MongoBackend:
		return f.createMongoBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	f.logger.Info("Initialized memory backend")
	return &BackendResult{Type: MemoryBackend, Persistence: memory.New()}, nil
}

func (f *DefaultFactory) createFileBackend(config Config) (*BackendResult, error) {
	store, err := file.Open(config.DataDirectory, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file store: %w", err)
	}
	f.logger.Info("Initialized file backend", "data_directory", config.DataDirectory)
	return &BackendResult{Type: FileBackend, Persistence: store}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := sqlite.NewRepository(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{Type: SQLiteBackend, Persistence: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createPostgresBackend(config Config) (*BackendResult, error) {
	if config.PostgresDSN == "" {
		return nil, &core.ConfigurationError{Missing: []string{"POSTGRES_DSN"}}
	}
	repo, err := postgres.Open(postgres.Config{
		DSN:             config.PostgresDSN,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		AutoMigrate:     true,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres repository: %w", err)
	}
	f.logger.Info("Initialized postgres backend")
	return &BackendResult{Type: PostgresBackend, Persistence: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createRESTBackend(config Config) (*BackendResult, error) {
	client, err := rest.New(rest.Config{URL: config.RemoteURL, Key: config.RemoteKey}, f.logger)
	if err != nil {
		return nil, err
	}
	f.logger.Info("Initialized REST backend", "url", config.RemoteURL)
	return &BackendResult{Type: RESTBackend, Persistence: client}, nil
}

func (f *DefaultFactory) createMongoBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if config.MongoURI == "" {
		return nil, &core.ConfigurationError{Missing: []string{"MONGODB_URI"}}
	}
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	store, err := mongo.Connect(connectCtx, config.MongoURI, config.MongoDB, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mongo store: %w", err)
	}
	f.logger.Info("Initialized mongo backend", "database", config.MongoDB)
	return &BackendResult{
		Type:        MongoBackend,
		Persistence: store,
		Cleanup: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
			defer cancel()
			return store.Close(ctx)
		},
	}, nil
}
