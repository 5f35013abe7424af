package adapters

import (
	"context"

	"expensetracker/internal/auth"
	"expensetracker/internal/core"
	"expensetracker/internal/remote"
	"expensetracker/internal/storage"
)

// SQLiteBackend adapts SQLiteRepository to remote.Backend so the HTTP
// handlers work unchanged against the self-hosted database.
type SQLiteBackend struct {
	*auth.Local
	storage *storage.SQLiteRepository
}

var (
	_ remote.Backend     = (*SQLiteBackend)(nil)
	_ remote.PhotoReader = (*SQLiteBackend)(nil)
)

func NewSQLiteBackend(repo *storage.SQLiteRepository, tokens *auth.Tokens) *SQLiteBackend {
	return &SQLiteBackend{
		Local:   auth.NewLocal(repo, tokens),
		storage: repo,
	}
}

// DataFor implements remote.Backend
func (a *SQLiteBackend) DataFor(s core.Session) remote.DataService {
	return a.storage.ForUser(s.User.ID)
}

// ReadPhoto implements remote.PhotoReader
func (a *SQLiteBackend) ReadPhoto(ctx context.Context, ownerID, id string) (core.Photo, error) {
	return a.storage.ReadPhoto(ctx, ownerID, id)
}

func (a *SQLiteBackend) Close() error {
	return a.storage.Close()
}
