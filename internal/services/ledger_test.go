package services

import (
	"context"
	"errors"
	"testing"

	"expensetracker/internal/core"
)

func TestLedger_Load(t *testing.T) {
	t.Run("both lists replaced", func(t *testing.T) {
		data := &fakeData{
			categories: []core.Category{{ID: "c1", Name: "Food"}},
			expenses:   []core.ExpenseEntry{{ID: "e1"}},
		}
		lists := &fakeLists{}
		if err := NewLedger(data, lists, nil).Load(context.Background()); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if lists.catSets != 1 || lists.expSets != 1 {
			t.Errorf("expected one replace per list, got %d/%d", lists.catSets, lists.expSets)
		}
	})

	t.Run("one failure keeps that list stale", func(t *testing.T) {
		stale := []core.Category{{ID: "old"}}
		data := &fakeData{
			getCatErr: errors.New("offline"),
			expenses:  []core.ExpenseEntry{{ID: "e1"}},
		}
		lists := &fakeLists{categories: stale}
		err := NewLedger(data, lists, nil).Load(context.Background())
		if !errors.Is(err, core.ErrRead) {
			t.Fatalf("expected read error, got %v", err)
		}
		if lists.catSets != 0 || lists.categories[0].ID != "old" {
			t.Error("category list should be left stale")
		}
		if lists.expSets != 1 {
			t.Error("expense list should still be replaced")
		}
	})
}

func TestLedger_AddCategory(t *testing.T) {
	tests := []struct {
		name      string
		catName   string
		color     string
		addErr    error
		getErr    error
		wantErr   error
		wantColor string
		wantCalls int
	}{
		{name: "default color", catName: "Food", wantColor: core.DefaultCategoryColor, wantCalls: 2},
		{name: "explicit color", catName: "Travel", color: "#00FF00", wantColor: "#00FF00", wantCalls: 2},
		{name: "empty name", catName: "  ", wantErr: core.ErrValidation},
		{name: "write failure", catName: "Food", addErr: errors.New("denied"), wantErr: core.ErrWrite, wantCalls: 1},
		{name: "refresh failure ignored", catName: "Food", getErr: errors.New("offline"), wantColor: core.DefaultCategoryColor, wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := &fakeData{addCatErr: tt.addErr, getCatErr: tt.getErr}
			c, err := NewLedger(data, &fakeLists{}, nil).AddCategory(context.Background(), tt.catName, tt.color)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("AddCategory() error = %v", err)
			}
			if got := len(data.Calls()); got != tt.wantCalls {
				t.Errorf("calls = %v, want %d", data.Calls(), tt.wantCalls)
			}
			if tt.wantErr == nil && c.Color != tt.wantColor {
				t.Errorf("color = %q, want %q", c.Color, tt.wantColor)
			}
		})
	}
}
