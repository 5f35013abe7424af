package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	postgrest "github.com/supabase-community/postgrest-go"
	storage_go "github.com/supabase-community/storage-go"
	supa "github.com/supabase-community/supabase-go"

	"expensetracker/internal/core"
)

type categoryRow struct {
	ID        string     `json:"id,omitempty"`
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	Color     string     `json:"color"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type expenseRow struct {
	ID          string          `json:"id,omitempty"`
	UserID      string          `json:"user_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	CategoryID  string          `json:"category_id"`
	PhotoURL    *string         `json:"photo_url"`
	CreatedAt   *time.Time      `json:"created_at,omitempty"`
}

type userData struct {
	client *supa.Client
	userID string
	bucket string
}

func (d *userData) AddCategory(ctx context.Context, c core.Category) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row := categoryRow{UserID: d.userID, Name: c.Name, Color: c.Color}
	if _, _, err := d.client.From(tableCategories).Insert(row, false, "", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (d *userData) GetCategories(ctx context.Context) ([]core.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, _, err := d.client.From(tableCategories).
		Select("*", "", false).
		Eq("user_id", d.userID).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}

	var rows []categoryRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	out := make([]core.Category, len(rows))
	for i, r := range rows {
		out[i] = core.Category{ID: r.ID, UserID: r.UserID, Name: r.Name, Color: r.Color}
		if r.CreatedAt != nil {
			out[i].CreatedAt = *r.CreatedAt
		}
	}
	return out, nil
}

func (d *userData) AddExpense(ctx context.Context, e core.ExpenseEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row := expenseRow{
		UserID:      d.userID,
		Description: e.Description,
		Amount:      e.Amount,
		CategoryID:  e.CategoryID,
	}
	if e.PhotoURL != "" {
		row.PhotoURL = &e.PhotoURL
	}
	if _, _, err := d.client.From(tableExpenses).Insert(row, false, "", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

func (d *userData) GetExpenses(ctx context.Context) ([]core.ExpenseEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, _, err := d.client.From(tableExpenses).
		Select("*", "", false).
		Eq("user_id", d.userID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("select expenses: %w", err)
	}

	var rows []expenseRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode expenses: %w", err)
	}
	out := make([]core.ExpenseEntry, len(rows))
	for i, r := range rows {
		out[i] = core.ExpenseEntry{
			ID:          r.ID,
			UserID:      r.UserID,
			Description: r.Description,
			Amount:      r.Amount,
			CategoryID:  r.CategoryID,
		}
		if r.PhotoURL != nil {
			out[i].PhotoURL = *r.PhotoURL
		}
		if r.CreatedAt != nil {
			out[i].CreatedAt = *r.CreatedAt
		}
	}
	return out, nil
}

// UploadPhoto stores the photo under <user id>/<random>.<ext> in the bucket
// and returns its public URL.
func (d *userData) UploadPhoto(ctx context.Context, p core.Photo) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.IsEmpty() {
		return "", core.ErrInvalidPhoto
	}
	objectPath := d.userID + "/" + uuid.NewString() + strings.ToLower(path.Ext(p.Name))
	contentType := p.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := d.client.Storage.UploadFile(d.bucket, objectPath, bytes.NewReader(p.Data), storage_go.FileOptions{
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload to bucket %s: %w", d.bucket, err)
	}
	return d.client.Storage.GetPublicUrl(d.bucket, objectPath).SignedURL, nil
}
