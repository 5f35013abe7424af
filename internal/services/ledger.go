package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/core"
	"expensetracker/internal/remote"
)

// ListHolder keeps the locally held copies of a user's lists.
// Both lists are replaced wholesale, never merged.
type ListHolder interface {
	ReplaceCategories(categories []core.Category)
	ReplaceExpenses(expenses []core.ExpenseEntry)
}

// Ledger refreshes a user's lists from the data service and adds categories.
type Ledger struct {
	data   remote.DataService
	lists  ListHolder
	logger *slog.Logger
}

func NewLedger(data remote.DataService, lists ListHolder, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{data: data, lists: lists, logger: logger}
}

// Load fetches categories and expenses concurrently. A failed fetch leaves
// that list untouched; the returned error joins every ReadError.
func (l *Ledger) Load(ctx context.Context) error {
	var (
		g              errgroup.Group
		catErr, expErr error
	)
	g.Go(func() error {
		catErr = l.RefreshCategories(ctx)
		return catErr
	})
	g.Go(func() error {
		expErr = l.RefreshExpenses(ctx)
		return expErr
	})
	_ = g.Wait()
	return errors.Join(catErr, expErr)
}

// RefreshCategories replaces the held category list with the backend's.
func (l *Ledger) RefreshCategories(ctx context.Context) error {
	categories, err := l.data.GetCategories(ctx)
	if err != nil {
		l.logger.WarnContext(ctx, "Category refresh failed, keeping stale list", "error", err)
		return &core.ReadError{Resource: "categories", Err: err}
	}
	l.lists.ReplaceCategories(categories)
	return nil
}

// RefreshExpenses replaces the held expense list with the backend's.
func (l *Ledger) RefreshExpenses(ctx context.Context) error {
	expenses, err := l.data.GetExpenses(ctx)
	if err != nil {
		l.logger.WarnContext(ctx, "Expense refresh failed, keeping stale list", "error", err)
		return &core.ReadError{Resource: "expenses", Err: err}
	}
	l.lists.ReplaceExpenses(expenses)
	return nil
}

// AddCategory writes a new category and then refreshes the category list.
// A blank color becomes core.DefaultCategoryColor. Refresh failures are
// logged and do not fail the call.
func (l *Ledger) AddCategory(ctx context.Context, name, color string) (core.Category, error) {
	c := core.Category{
		Name:  strings.TrimSpace(name),
		Color: strings.TrimSpace(color),
	}
	if c.Color == "" {
		c.Color = core.DefaultCategoryColor
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	if err := l.data.AddCategory(ctx, c); err != nil {
		l.logger.ErrorContext(ctx, "Failed to add category", "name", c.Name, "error", err)
		return core.Category{}, &core.WriteError{Resource: "category", Err: err}
	}

	_ = l.RefreshCategories(ctx)
	return c, nil
}
