// Package session keeps the per-user list state between requests.
package session

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"expensetracker/internal/core"
)

// State is one user's locally held lists. Each list is replaced wholesale.
type State struct {
	mu         sync.RWMutex
	categories []core.Category
	expenses   []core.ExpenseEntry
	loaded     bool
}

func (s *State) ReplaceCategories(categories []core.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = categories
	s.loaded = true
}

func (s *State) ReplaceExpenses(expenses []core.ExpenseEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = expenses
	s.loaded = true
}

// Categories returns a copy of the held categories.
func (s *State) Categories() []core.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Category(nil), s.categories...)
}

// Expenses returns a copy of the held expenses.
func (s *State) Expenses() []core.ExpenseEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.ExpenseEntry(nil), s.expenses...)
}

// Loaded reports whether any list was ever fetched.
func (s *State) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// CategoryName resolves id against the held categories.
func (s *State) CategoryName(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.CategoryName(s.categories, id)
}

// Store maps user ids to their State. Idle entries expire after ttl.
type Store struct {
	mu    sync.Mutex
	items *cache.Cache
}

func NewStore(ttl time.Duration) *Store {
	return &Store{items: cache.New(ttl, ttl/2+time.Minute)}
}

// Get returns the user's state, creating an empty one if needed.
// Every call extends the entry's lifetime.
func (s *Store) Get(userID string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.items.Get(userID); ok {
		st := v.(*State)
		s.items.SetDefault(userID, st)
		return st
	}
	st := &State{}
	s.items.SetDefault(userID, st)
	return st
}

// Drop forgets the user's state.
func (s *Store) Drop(userID string) {
	s.items.Delete(userID)
}

// Len returns the number of tracked users.
func (s *Store) Len() int {
	return s.items.ItemCount()
}
