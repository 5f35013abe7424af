// Package supabase implements the data service on a hosted Supabase project:
// GoTrue for accounts, PostgREST for records and Storage for photos.
//
// Expected schema (row level security restricting rows to auth.uid()):
//
//	categories(id uuid default gen_random_uuid(), user_id uuid, name text, color text, created_at timestamptz default now())
//	expenses(id uuid default gen_random_uuid(), user_id uuid, description text, amount numeric,
//	         category_id uuid, photo_url text null, created_at timestamptz default now())
package supabase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
	supa "github.com/supabase-community/supabase-go"

	"expensetracker/internal/core"
	"expensetracker/internal/remote"
)

const (
	tableCategories = "categories"
	tableExpenses   = "expenses"

	// Verified tokens are trusted for this long before GoTrue is asked again.
	userCacheTTL = time.Minute
)

type Config struct {
	URL         string
	Key         string
	PhotoBucket string
}

type Backend struct {
	cfg   Config
	auth  gotrue.Client
	users *cache.Cache
}

var _ remote.Backend = (*Backend)(nil)

func New(cfg Config) (*Backend, error) {
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	client, err := supa.NewClient(cfg.URL, cfg.Key, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	if cfg.PhotoBucket == "" {
		cfg.PhotoBucket = "expense-photos"
	}
	return &Backend{
		cfg:   cfg,
		auth:  client.Auth,
		users: cache.New(userCacheTTL, 5*time.Minute),
	}, nil
}

func (b *Backend) SignUp(ctx context.Context, email, password string) (core.Session, error) {
	if err := ctx.Err(); err != nil {
		return core.Session{}, err
	}
	resp, err := b.auth.Signup(types.SignupRequest{
		Email:    strings.TrimSpace(email),
		Password: password,
	})
	if err != nil {
		return core.Session{}, err
	}
	// With auto-confirm the response is a full session, otherwise only the user.
	if resp.AccessToken == "" {
		slog.InfoContext(ctx, "Supabase sign up awaiting confirmation", "user_id", resp.User.ID.String())
		return core.Session{}, core.ErrConfirmationPending
	}
	return b.session(resp.Session), nil
}

func (b *Backend) SignIn(ctx context.Context, email, password string) (core.Session, error) {
	if err := ctx.Err(); err != nil {
		return core.Session{}, err
	}
	resp, err := b.auth.SignInWithEmailPassword(strings.TrimSpace(email), password)
	if err != nil {
		return core.Session{}, errors.Join(core.ErrInvalidCredentials, err)
	}
	return b.session(resp.Session), nil
}

func (b *Backend) SignOut(ctx context.Context, s core.Session) error {
	if s.IsZero() {
		return nil
	}
	b.users.Delete(s.AccessToken)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.auth.WithToken(s.AccessToken).Logout(); err != nil {
		return fmt.Errorf("supabase logout: %w", err)
	}
	return nil
}

func (b *Backend) CurrentUser(ctx context.Context, accessToken string) (core.User, error) {
	if accessToken == "" {
		return core.User{}, core.ErrNotAuthenticated
	}
	if u, ok := b.users.Get(accessToken); ok {
		return u.(core.User), nil
	}
	if err := ctx.Err(); err != nil {
		return core.User{}, err
	}
	resp, err := b.auth.WithToken(accessToken).GetUser()
	if err != nil {
		return core.User{}, errors.Join(core.ErrNotAuthenticated, err)
	}
	u := core.User{ID: resp.ID.String(), Email: resp.Email}
	b.users.SetDefault(accessToken, u)
	return u, nil
}

// DataFor returns a client that sends the user's access token, so row level
// security applies to every request.
func (b *Backend) DataFor(s core.Session) remote.DataService {
	client, err := supa.NewClient(b.cfg.URL, b.cfg.Key, &supa.ClientOptions{
		Headers: map[string]string{"Authorization": "Bearer " + s.AccessToken},
	})
	if err != nil {
		return unavailable{err: err}
	}
	return &userData{client: client, userID: s.User.ID, bucket: b.cfg.PhotoBucket}
}

func (b *Backend) session(s types.Session) core.Session {
	u := core.User{ID: s.User.ID.String(), Email: s.User.Email}
	b.users.SetDefault(s.AccessToken, u)
	return core.Session{AccessToken: s.AccessToken, User: u}
}

// unavailable fails every call with the client construction error.
type unavailable struct{ err error }

func (u unavailable) AddCategory(context.Context, core.Category) error { return u.err }
func (u unavailable) GetCategories(context.Context) ([]core.Category, error) {
	return nil, u.err
}
func (u unavailable) AddExpense(context.Context, core.ExpenseEntry) error { return u.err }
func (u unavailable) GetExpenses(context.Context) ([]core.ExpenseEntry, error) {
	return nil, u.err
}
func (u unavailable) UploadPhoto(context.Context, core.Photo) (string, error) {
	return "", u.err
}
