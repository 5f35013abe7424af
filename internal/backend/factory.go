package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"expensetracker/internal/adapters"
	"expensetracker/internal/amqp"
	"expensetracker/internal/auth"
	"expensetracker/internal/remote/memory"
	"expensetracker/internal/remote/supabase"
	"expensetracker/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(config)
	case SupabaseBackend:
		result, err = f.createSupabaseBackend(config)
	case MemoryBackend:
		result, err = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	f.attachPublisher(result, config)
	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	sqliteRepo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	b := adapters.NewSQLiteBackend(sqliteRepo, auth.NewTokens(config.AuthTokenSecret, config.AuthTokenTTL))

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Backend: b,
		Photos:  b,
		Ready:   sqliteRepo.Ping,
		Cleanup: b.Close,
	}, nil
}

func (f *DefaultFactory) createSupabaseBackend(config Config) (*BackendResult, error) {
	b, err := supabase.New(supabase.Config{
		URL:         config.SupabaseURL,
		Key:         config.SupabaseKey,
		PhotoBucket: config.SupabasePhotoBucket,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Supabase client: %w", err)
	}

	f.logger.Info("Initialized Supabase backend",
		"url", config.SupabaseURL,
		"photo_bucket", config.SupabasePhotoBucket)

	return &BackendResult{Backend: b}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store := memory.New()
	b := memory.NewBackend(store, auth.NewTokens(config.AuthTokenSecret, config.AuthTokenTTL))

	f.logger.Info("Initialized memory backend")

	return &BackendResult{
		Backend: b,
		Photos:  store,
	}, nil
}

// attachPublisher connects to the broker when configured. A broker that
// cannot be reached only disables events.
func (f *DefaultFactory) attachPublisher(result *BackendResult, config Config) {
	if config.AMQPURL == "" {
		return
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without expense events", "error", err)
		return
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)

	result.Publisher = client
	prev := result.Cleanup
	result.Cleanup = func() error {
		var errs []error
		if prev != nil {
			if err := prev(); err != nil {
				errs = append(errs, fmt.Errorf("backend: %w", err))
			}
		}
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
		return errors.Join(errs...)
	}
}
