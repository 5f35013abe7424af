package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
	"expensetracker/internal/remote"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateUser implements auth.UserStore
func (r *SQLiteRepository) CreateUser(ctx context.Context, email, passwordHash string) (core.User, error) {
	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    r.now().UnixNano(),
	}
	if err := r.queries.CreateUser(ctx, u); err != nil {
		if isUniqueViolation(err) {
			return core.User{}, core.ErrEmailAlreadyInUse
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	slog.InfoContext(ctx, "User created", "user_id", u.ID)
	return core.User{ID: u.ID, Email: u.Email}, nil
}

// FindUserByEmail implements auth.UserStore
func (r *SQLiteRepository) FindUserByEmail(ctx context.Context, email string) (core.User, string, error) {
	u, err := r.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, "", core.ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, "", fmt.Errorf("get user by email: %w", err)
	}
	return core.User{ID: u.ID, Email: u.Email}, u.PasswordHash, nil
}

// ReadPhoto implements remote.PhotoReader
func (r *SQLiteRepository) ReadPhoto(ctx context.Context, ownerID, id string) (core.Photo, error) {
	p, err := r.queries.GetPhoto(ctx, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Photo{}, core.ErrPhotoNotFound
	}
	if err != nil {
		return core.Photo{}, fmt.Errorf("get photo: %w", err)
	}
	return core.Photo{Name: p.Name, ContentType: p.ContentType, Data: p.Data}, nil
}

// ForUser returns a DataService bound to userID.
func (r *SQLiteRepository) ForUser(userID string) remote.DataService {
	return &userRepository{repo: r, userID: userID}
}

type userRepository struct {
	repo   *SQLiteRepository
	userID string
}

func (u *userRepository) AddCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	row := Category{
		ID:        uuid.NewString(),
		UserID:    u.userID,
		Name:      c.Name,
		Color:     c.Color,
		CreatedAt: u.repo.now().UnixNano(),
	}
	if err := u.repo.queries.CreateCategory(ctx, row); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	slog.InfoContext(ctx, "Category saved to SQLite", "id", row.ID, "name", row.Name)
	return nil
}

func (u *userRepository) GetCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := u.repo.queries.ListCategories(ctx, u.userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, len(rows))
	for i, c := range rows {
		out[i] = core.Category{
			ID:        c.ID,
			UserID:    c.UserID,
			Name:      c.Name,
			Color:     c.Color,
			CreatedAt: time.Unix(0, c.CreatedAt).UTC(),
		}
	}
	return out, nil
}

func (u *userRepository) AddExpense(ctx context.Context, e core.ExpenseEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	row := Expense{
		ID:          uuid.NewString(),
		UserID:      u.userID,
		Description: e.Description,
		Amount:      e.Amount.String(),
		CategoryID:  e.CategoryID,
		PhotoURL:    sql.NullString{String: e.PhotoURL, Valid: e.PhotoURL != ""},
		CreatedAt:   u.repo.now().UnixNano(),
	}
	if err := u.repo.queries.CreateExpense(ctx, row); err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", row.ID,
		"description", row.Description,
		"amount", row.Amount,
		"has_photo", row.PhotoURL.Valid)
	return nil
}

func (u *userRepository) GetExpenses(ctx context.Context) ([]core.ExpenseEntry, error) {
	rows, err := u.repo.queries.ListExpenses(ctx, u.userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out := make([]core.ExpenseEntry, 0, len(rows))
	for _, e := range rows {
		amount, err := decimal.NewFromString(e.Amount)
		if err != nil {
			return nil, fmt.Errorf("expense %s: parse amount %q: %w", e.ID, e.Amount, err)
		}
		out = append(out, core.ExpenseEntry{
			ID:          e.ID,
			UserID:      e.UserID,
			Description: e.Description,
			Amount:      amount,
			CategoryID:  e.CategoryID,
			PhotoURL:    e.PhotoURL.String,
			CreatedAt:   time.Unix(0, e.CreatedAt).UTC(),
		})
	}
	return out, nil
}

func (u *userRepository) UploadPhoto(ctx context.Context, p core.Photo) (string, error) {
	if p.IsEmpty() {
		return "", core.ErrInvalidPhoto
	}
	row := Photo{
		ID:          uuid.NewString() + strings.ToLower(filepath.Ext(p.Name)),
		UserID:      u.userID,
		Name:        p.Name,
		ContentType: p.ContentType,
		Data:        p.Data,
		CreatedAt:   u.repo.now().UnixNano(),
	}
	if err := u.repo.queries.CreatePhoto(ctx, row); err != nil {
		return "", fmt.Errorf("store photo: %w", err)
	}
	return remote.PhotoURL(row.ID), nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
