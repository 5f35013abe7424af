package session

import (
	"sync"
	"testing"
	"time"

	"expensetracker/internal/core"
)

func TestStore_GetReturnsSameState(t *testing.T) {
	s := NewStore(time.Hour)
	a := s.Get("u1")
	a.ReplaceCategories([]core.Category{{ID: "c1", Name: "Food"}})

	if b := s.Get("u1"); b != a {
		t.Fatal("expected the same state for the same user")
	}
	if s.Get("u2") == a {
		t.Fatal("users must not share state")
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}

	s.Drop("u1")
	if s.Get("u1").Loaded() {
		t.Error("dropped state should start empty")
	}
}

func TestState_ReplaceIsWholesale(t *testing.T) {
	st := &State{}
	st.ReplaceExpenses([]core.ExpenseEntry{{ID: "1"}, {ID: "2"}})
	st.ReplaceExpenses([]core.ExpenseEntry{{ID: "3"}})

	got := st.Expenses()
	if len(got) != 1 || got[0].ID != "3" {
		t.Fatalf("Expenses() = %+v", got)
	}
	got[0].ID = "mutated"
	if st.Expenses()[0].ID != "3" {
		t.Error("Expenses() must return a copy")
	}
}

func TestState_CategoryName(t *testing.T) {
	st := &State{}
	st.ReplaceCategories([]core.Category{{ID: "c1", Name: "Food"}})
	if st.CategoryName("c1") != "Food" || st.CategoryName("zz") != core.UnknownCategoryName {
		t.Error("unexpected category names")
	}
}

func TestState_ConcurrentReplace(t *testing.T) {
	st := &State{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			st.ReplaceExpenses([]core.ExpenseEntry{{ID: "x"}})
		}()
		go func() {
			defer wg.Done()
			_ = st.Expenses()
		}()
	}
	wg.Wait()
	if len(st.Expenses()) != 1 {
		t.Error("expected a single wholesale list")
	}
}
