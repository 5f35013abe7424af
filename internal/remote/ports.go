// Package remote declares the ports through which the application talks to
// its data service: records, blobs and authentication state.
package remote

import (
	"context"

	"expensetracker/internal/core"
)

// Ports for outbound adapters. Implementations are scoped to one user.
type (
	CategoryStore interface {
		AddCategory(ctx context.Context, c core.Category) error
		GetCategories(ctx context.Context) ([]core.Category, error)
	}

	ExpenseStore interface {
		AddExpense(ctx context.Context, e core.ExpenseEntry) error
		// GetExpenses returns the user's expenses, newest first.
		GetExpenses(ctx context.Context) ([]core.ExpenseEntry, error)
	}

	// PhotoUploader stores a photo and returns the URL it can be fetched from.
	// An empty URL with a nil error is treated as a failed upload by callers.
	PhotoUploader interface {
		UploadPhoto(ctx context.Context, p core.Photo) (url string, err error)
	}

	DataService interface {
		CategoryStore
		ExpenseStore
		PhotoUploader
	}

	// Authenticator manages accounts and sessions.
	Authenticator interface {
		SignUp(ctx context.Context, email, password string) (core.Session, error)
		SignIn(ctx context.Context, email, password string) (core.Session, error)
		SignOut(ctx context.Context, s core.Session) error
		// CurrentUser resolves an access token. It returns core.ErrNotAuthenticated
		// when the token is missing, expired or revoked.
		CurrentUser(ctx context.Context, accessToken string) (core.User, error)
	}

	// PhotoReader serves photos kept by self-hosted backends. A photo owned
	// by someone else reads as core.ErrPhotoNotFound.
	PhotoReader interface {
		ReadPhoto(ctx context.Context, ownerID, id string) (core.Photo, error)
	}

	// Backend is a complete data service.
	Backend interface {
		Authenticator
		// DataFor returns a DataService acting on behalf of the session's user.
		DataFor(s core.Session) DataService
	}
)

// PhotoPathPrefix is the URL prefix under which self-hosted photos are served.
const PhotoPathPrefix = "/photos/"

// PhotoURL builds the URL of a self-hosted photo.
func PhotoURL(id string) string {
	return PhotoPathPrefix + id
}
