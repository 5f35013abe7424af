package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultCategoryColor is used when a category is created without a color.
	DefaultCategoryColor = "#FFFFFF"
	// UnknownCategoryName is displayed for expenses whose category is not loaded.
	UnknownCategoryName = "Unknown"
)

type (
	// Category is a named, colored grouping for expenses.
	Category struct {
		ID        string
		UserID    string
		Name      string
		Color     string
		CreatedAt time.Time
	}

	// ExpenseEntry is a single recorded expenditure.
	ExpenseEntry struct {
		ID          string
		UserID      string
		Description string
		Amount      decimal.Decimal
		CategoryID  string
		PhotoURL    string // empty when no photo is attached
		CreatedAt   time.Time
	}

	// Photo is a locally selected image waiting to be uploaded.
	Photo struct {
		Name        string
		ContentType string
		Data        []byte
	}

	User struct {
		ID    string
		Email string
	}

	// Session is the authenticated state handed out by the backend.
	Session struct {
		AccessToken string
		User        User
	}
)

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Fields: []FieldError{{Field: "name", Err: ErrEmptyName}}}
	}
	return nil
}

func (e ExpenseEntry) Validate() error {
	var fields []FieldError
	if strings.TrimSpace(e.Description) == "" {
		fields = append(fields, FieldError{Field: "description", Err: ErrEmptyDescription})
	}
	if !e.Amount.IsPositive() {
		fields = append(fields, FieldError{Field: "amount", Err: ErrInvalidAmount})
	}
	if strings.TrimSpace(e.CategoryID) == "" {
		fields = append(fields, FieldError{Field: "category", Err: ErrNoCategory})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// HasPhoto reports whether the entry references an uploaded photo.
func (e ExpenseEntry) HasPhoto() bool {
	return e.PhotoURL != ""
}

// IsEmpty reports whether no photo bytes were selected.
func (p *Photo) IsEmpty() bool {
	return p == nil || len(p.Data) == 0
}

// IsZero reports whether the session carries no credentials.
func (s Session) IsZero() bool {
	return s.AccessToken == ""
}
