package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    int64
}

type Category struct {
	ID        string
	UserID    string
	Name      string
	Color     string
	CreatedAt int64
}

type Expense struct {
	ID          string
	UserID      string
	Description string
	Amount      string
	CategoryID  string
	PhotoURL    sql.NullString
	CreatedAt   int64
}

type Photo struct {
	ID          string
	UserID      string
	Name        string
	ContentType string
	Data        []byte
	CreatedAt   int64
}

const createUser = `INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`

func (q *Queries) CreateUser(ctx context.Context, u User) error {
	_, err := q.db.ExecContext(ctx, createUser, u.ID, u.Email, u.PasswordHash, u.CreatedAt)
	return err
}

const getUserByEmail = `SELECT id, email, password_hash, created_at FROM users WHERE email = ?`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx, getUserByEmail, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

const createCategory = `INSERT INTO categories (id, user_id, name, color, created_at) VALUES (?, ?, ?, ?, ?)`

func (q *Queries) CreateCategory(ctx context.Context, c Category) error {
	_, err := q.db.ExecContext(ctx, createCategory, c.ID, c.UserID, c.Name, c.Color, c.CreatedAt)
	return err
}

const listCategories = `SELECT id, user_id, name, color, created_at FROM categories
WHERE user_id = ? ORDER BY created_at, rowid`

func (q *Queries) ListCategories(ctx context.Context, userID string) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const createExpense = `INSERT INTO expenses (id, user_id, description, amount, category_id, photo_url, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateExpense(ctx context.Context, e Expense) error {
	_, err := q.db.ExecContext(ctx, createExpense,
		e.ID, e.UserID, e.Description, e.Amount, e.CategoryID, e.PhotoURL, e.CreatedAt)
	return err
}

const listExpenses = `SELECT id, user_id, description, amount, category_id, photo_url, created_at
FROM expenses WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`

func (q *Queries) ListExpenses(ctx context.Context, userID string) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.Description, &e.Amount, &e.CategoryID, &e.PhotoURL, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

const createPhoto = `INSERT INTO photos (id, user_id, name, content_type, data, created_at) VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) CreatePhoto(ctx context.Context, p Photo) error {
	_, err := q.db.ExecContext(ctx, createPhoto, p.ID, p.UserID, p.Name, p.ContentType, p.Data, p.CreatedAt)
	return err
}

const getPhoto = `SELECT id, user_id, name, content_type, data, created_at FROM photos WHERE id = ? AND user_id = ?`

func (q *Queries) GetPhoto(ctx context.Context, id, userID string) (Photo, error) {
	var p Photo
	err := q.db.QueryRowContext(ctx, getPhoto, id, userID).Scan(&p.ID, &p.UserID, &p.Name, &p.ContentType, &p.Data, &p.CreatedAt)
	return p, err
}
