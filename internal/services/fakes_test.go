package services

import (
	"context"
	"sync"

	"expensetracker/internal/core"
)

// fakeData records every call in order and returns scripted results.
type fakeData struct {
	mu    sync.Mutex
	calls []string

	uploadURL  string
	uploadErr  error
	addExpErr  error
	addCatErr  error
	getExpErr  error
	getCatErr  error
	expenses   []core.ExpenseEntry
	categories []core.Category

	written    []core.ExpenseEntry
	writtenCat []core.Category
}

func (f *fakeData) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeData) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeData) count(call string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeData) AddCategory(_ context.Context, c core.Category) error {
	f.record("AddCategory")
	if f.addCatErr != nil {
		return f.addCatErr
	}
	f.mu.Lock()
	f.writtenCat = append(f.writtenCat, c)
	f.mu.Unlock()
	return nil
}

func (f *fakeData) GetCategories(context.Context) ([]core.Category, error) {
	f.record("GetCategories")
	if f.getCatErr != nil {
		return nil, f.getCatErr
	}
	return f.categories, nil
}

func (f *fakeData) AddExpense(_ context.Context, e core.ExpenseEntry) error {
	f.record("AddExpense")
	if f.addExpErr != nil {
		return f.addExpErr
	}
	f.mu.Lock()
	f.written = append(f.written, e)
	f.mu.Unlock()
	return nil
}

func (f *fakeData) GetExpenses(context.Context) ([]core.ExpenseEntry, error) {
	f.record("GetExpenses")
	if f.getExpErr != nil {
		return nil, f.getExpErr
	}
	return f.expenses, nil
}

func (f *fakeData) UploadPhoto(context.Context, core.Photo) (string, error) {
	f.record("UploadPhoto")
	return f.uploadURL, f.uploadErr
}

// blockingUpload holds every UploadPhoto until release is closed.
type blockingUpload struct {
	*fakeData
	started chan struct{}
	release chan struct{}
}

func (b *blockingUpload) UploadPhoto(ctx context.Context, p core.Photo) (string, error) {
	b.record("UploadPhoto")
	b.started <- struct{}{}
	select {
	case <-b.release:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return b.uploadURL, b.uploadErr
}

func (f *fakeData) Written() []core.ExpenseEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.ExpenseEntry(nil), f.written...)
}

type fakeLists struct {
	mu         sync.Mutex
	categories []core.Category
	expenses   []core.ExpenseEntry
	catSets    int
	expSets    int
}

func (l *fakeLists) ReplaceCategories(c []core.Category) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.categories = c
	l.catSets++
}

func (l *fakeLists) ReplaceExpenses(e []core.ExpenseEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.expenses = e
	l.expSets++
}

func (l *fakeLists) expenseSets() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.expSets
}
