package adapters

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/auth"
	"expensetracker/internal/core"
	"expensetracker/internal/remote"
	"expensetracker/internal/storage"
)

func TestSQLiteBackend_EndToEnd(t *testing.T) {
	ctx := context.Background()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	b := NewSQLiteBackend(repo, auth.NewTokens("secret", time.Hour))
	defer b.Close()

	sess, err := b.SignUp(ctx, "user@example.com", "secret1")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if u, err := b.CurrentUser(ctx, sess.AccessToken); err != nil || u.ID != sess.User.ID {
		t.Fatalf("CurrentUser() = %+v, %v", u, err)
	}

	data := b.DataFor(sess)
	url, err := data.UploadPhoto(ctx, core.Photo{Name: "a.jpg", ContentType: "image/jpeg", Data: []byte{1}})
	if err != nil {
		t.Fatalf("UploadPhoto() error = %v", err)
	}
	if err := data.AddExpense(ctx, core.ExpenseEntry{
		Description: "Lunch",
		Amount:      decimal.RequireFromString("45.50"),
		CategoryID:  "c1",
		PhotoURL:    url,
	}); err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}

	expenses, err := data.GetExpenses(ctx)
	if err != nil || len(expenses) != 1 || expenses[0].PhotoURL != url {
		t.Fatalf("GetExpenses() = %+v, %v", expenses, err)
	}
	if _, err := b.ReadPhoto(ctx, sess.User.ID, strings.TrimPrefix(url, remote.PhotoPathPrefix)); err != nil {
		t.Errorf("ReadPhoto() error = %v", err)
	}
}
