package backend

import (
	"context"
	"time"

	"expensetracker/internal/remote"
	"expensetracker/internal/services"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend remote.Backend
	// Photos is set for backends that serve their own photos.
	Photos remote.PhotoReader
	// Publisher is set when expense events are enabled.
	Publisher services.EventPublisher
	// Ready probes the data store; nil when there is nothing to probe.
	Ready   func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Local authentication, memory and sqlite
	AuthTokenSecret string
	AuthTokenTTL    time.Duration

	// SQLite specific
	SQLiteDBPath string

	// Supabase specific
	SupabaseURL         string
	SupabaseKey         string
	SupabasePhotoBucket string

	// Optional expense events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend   BackendType = "sqlite"
	SupabaseBackend BackendType = "supabase"
	MemoryBackend   BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SupabaseBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
