package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

func newTestSubmitter(data *fakeData, lists *fakeLists, states *[]SubmissionState) *Submitter {
	ledger := NewLedger(data, lists, nil)
	return NewSubmitter(ledger, WithStateObserver(func(s SubmissionState) {
		*states = append(*states, s)
	}))
}

func TestSubmit_ValidationFailureMakesNoCalls(t *testing.T) {
	tests := []struct {
		name  string
		form  ExpenseForm
		field string
	}{
		{"empty description", ExpenseForm{Amount: "10", CategoryID: "c1"}, "description"},
		{"blank description", ExpenseForm{Description: "   ", Amount: "10", CategoryID: "c1"}, "description"},
		{"no category", ExpenseForm{Description: "Lunch", Amount: "10"}, "category"},
		{"non-numeric amount", ExpenseForm{Description: "Lunch", Amount: "abc", CategoryID: "c1"}, "amount"},
		{"empty amount", ExpenseForm{Description: "Lunch", CategoryID: "c1"}, "amount"},
		{"negative amount", ExpenseForm{Description: "Lunch", Amount: "-1", CategoryID: "c1"}, "amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := &fakeData{uploadURL: "https://cdn/x.jpg"}
			var states []SubmissionState
			s := newTestSubmitter(data, &fakeLists{}, &states)

			form := tt.form
			form.Photo = &core.Photo{Name: "p.jpg", Data: []byte{0xff}}
			before := form

			_, err := s.Submit(context.Background(), &form)

			if !errors.Is(err, core.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var verr *core.ValidationError
			if !errors.As(err, &verr) || !verr.HasField(tt.field) {
				t.Errorf("expected field %q to be reported, got %v", tt.field, err)
			}
			if calls := data.Calls(); len(calls) != 0 {
				t.Errorf("expected no remote calls, got %v", calls)
			}
			if !reflect.DeepEqual(form, before) {
				t.Errorf("form must be untouched, got %+v", form)
			}
			want := []SubmissionState{StateValidating, StateFailed}
			if !reflect.DeepEqual(states, want) {
				t.Errorf("states = %v, want %v", states, want)
			}
		})
	}
}

func TestSubmit_LunchScenarioWithoutPhoto(t *testing.T) {
	refreshed := []core.ExpenseEntry{{ID: "e1", Description: "Lunch"}}
	data := &fakeData{expenses: refreshed}
	lists := &fakeLists{}
	var states []SubmissionState
	s := newTestSubmitter(data, lists, &states)

	form := ExpenseForm{Description: "Lunch", Amount: "45.50", CategoryID: "food"}
	out, err := s.Submit(context.Background(), &form)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if got, want := data.Calls(), []string{"AddExpense", "GetExpenses"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	w := data.written[0]
	if w.Description != "Lunch" || !w.Amount.Equal(decimal.RequireFromString("45.50")) || w.CategoryID != "food" || w.PhotoURL != "" {
		t.Errorf("unexpected written entry %+v", w)
	}
	if lists.expSets != 1 || !reflect.DeepEqual(lists.expenses, refreshed) {
		t.Errorf("expected list replaced once with refreshed data, got %d sets", lists.expSets)
	}
	if out.Message() != "Expense added!" {
		t.Errorf("Message() = %q", out.Message())
	}
	if !form.IsEmpty() {
		t.Errorf("form should be cleared, got %+v", form)
	}
	want := []SubmissionState{StateValidating, StateWriting, StateRefreshing, StateDone}
	if !reflect.DeepEqual(states, want) {
		t.Errorf("states = %v, want %v", states, want)
	}
}

func TestSubmit_WithPhotoUploadsBeforeWrite(t *testing.T) {
	data := &fakeData{uploadURL: "https://cdn/receipt.jpg"}
	var states []SubmissionState
	s := newTestSubmitter(data, &fakeLists{}, &states)

	form := ExpenseForm{
		Description: "Groceries",
		Amount:      "12,50",
		CategoryID:  "food",
		Photo:       &core.Photo{Name: "receipt.jpg", ContentType: "image/jpeg", Data: []byte{1, 2, 3}},
	}
	out, err := s.Submit(context.Background(), &form)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if got, want := data.Calls(), []string{"UploadPhoto", "AddExpense", "GetExpenses"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	if data.written[0].PhotoURL != "https://cdn/receipt.jpg" {
		t.Errorf("photo url not attached: %+v", data.written[0])
	}
	if out.Message() != "Expense added with photo!" {
		t.Errorf("Message() = %q", out.Message())
	}
	want := []SubmissionState{StateValidating, StateUploading, StateWriting, StateRefreshing, StateDone}
	if !reflect.DeepEqual(states, want) {
		t.Errorf("states = %v, want %v", states, want)
	}
}

func TestSubmit_UploadFailureStopsBeforeWrite(t *testing.T) {
	tests := []struct {
		name string
		data *fakeData
	}{
		{"backend error", &fakeData{uploadErr: errors.New("bucket unavailable")}},
		{"empty url", &fakeData{uploadURL: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lists := &fakeLists{}
			var states []SubmissionState
			s := newTestSubmitter(tt.data, lists, &states)

			form := ExpenseForm{
				Description: "Taxi",
				Amount:      "8",
				CategoryID:  "transport",
				Photo:       &core.Photo{Name: "t.png", Data: []byte{1}},
			}
			_, err := s.Submit(context.Background(), &form)

			if !errors.Is(err, core.ErrUpload) {
				t.Fatalf("expected upload error, got %v", err)
			}
			if got, want := tt.data.Calls(), []string{"UploadPhoto"}; !reflect.DeepEqual(got, want) {
				t.Errorf("calls = %v, want %v", got, want)
			}
			if lists.expSets != 0 {
				t.Error("list must not be refreshed after upload failure")
			}
			if !form.IsEmpty() {
				t.Errorf("form should stay cleared after upload failure, got %+v", form)
			}
			if states[len(states)-1] != StateFailed {
				t.Errorf("final state = %v, want failed", states[len(states)-1])
			}
		})
	}
}

func TestSubmit_WriteFailureSkipsRefresh(t *testing.T) {
	cause := errors.New("permission denied")
	data := &fakeData{addExpErr: cause}
	lists := &fakeLists{}
	var states []SubmissionState
	s := newTestSubmitter(data, lists, &states)

	form := ExpenseForm{Description: "Coffee", Amount: "3.20", CategoryID: "food"}
	_, err := s.Submit(context.Background(), &form)

	if !errors.Is(err, core.ErrWrite) || !errors.Is(err, cause) {
		t.Fatalf("expected write error wrapping cause, got %v", err)
	}
	if got, want := data.Calls(), []string{"AddExpense"}; !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
	if lists.expSets != 0 {
		t.Error("list must not be refreshed after write failure")
	}
	if !form.IsEmpty() {
		t.Errorf("form should stay cleared after write failure, got %+v", form)
	}
	want := []SubmissionState{StateValidating, StateWriting, StateFailed}
	if !reflect.DeepEqual(states, want) {
		t.Errorf("states = %v, want %v", states, want)
	}
}

func TestSubmit_RefreshFailureStillSucceeds(t *testing.T) {
	stale := []core.ExpenseEntry{{ID: "old"}}
	data := &fakeData{getExpErr: errors.New("timeout")}
	lists := &fakeLists{expenses: stale}
	var states []SubmissionState
	s := newTestSubmitter(data, lists, &states)

	form := ExpenseForm{Description: "Bus", Amount: "2", CategoryID: "transport"}
	out, err := s.Submit(context.Background(), &form)
	if err != nil {
		t.Fatalf("refresh failure must not fail the submission: %v", err)
	}
	if !errors.Is(out.RefreshErr, core.ErrRead) {
		t.Errorf("RefreshErr = %v, want read error", out.RefreshErr)
	}
	if data.count("GetExpenses") != 1 {
		t.Errorf("expected exactly one refresh, calls = %v", data.Calls())
	}
	if !reflect.DeepEqual(lists.expenses, stale) {
		t.Error("stale list should be kept")
	}
	if states[len(states)-1] != StateDone {
		t.Errorf("final state = %v, want done", states[len(states)-1])
	}
}

func TestSubmit_ConcurrentSubmissionsAreIndependent(t *testing.T) {
	data := &blockingUpload{
		fakeData: &fakeData{uploadURL: "https://cdn/r.jpg"},
		started:  make(chan struct{}, 1),
		release:  make(chan struct{}),
	}
	lists := &fakeLists{}
	s := NewSubmitter(NewLedger(data, lists, nil))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type result struct {
		out Outcome
		err error
	}
	first := make(chan result, 1)
	go func() {
		form := &ExpenseForm{Description: "Taxi", Amount: "120", CategoryID: "c2",
			Photo: &core.Photo{Name: "r.jpg", Data: []byte{0xff}}}
		out, err := s.Submit(ctx, form)
		first <- result{out, err}
	}()

	select {
	case <-data.started:
	case <-ctx.Done():
		t.Fatal("first submission never reached the upload")
	}

	// The second submission finishes while the first is still uploading.
	out, err := s.Submit(ctx, &ExpenseForm{Description: "Lunch", Amount: "45.50", CategoryID: "c1"})
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if out.Entry.Description != "Lunch" || out.RefreshErr != nil {
		t.Errorf("second outcome = %+v", out)
	}
	if w := data.Written(); len(w) != 1 || w[0].Description != "Lunch" {
		t.Fatalf("written while first blocked = %+v", w)
	}

	close(data.release)
	var r result
	select {
	case r = <-first:
	case <-ctx.Done():
		t.Fatal("first submission did not finish")
	}
	if r.err != nil {
		t.Fatalf("first Submit: %v", r.err)
	}
	if r.out.Entry.PhotoURL != "https://cdn/r.jpg" {
		t.Errorf("first outcome = %+v", r.out)
	}

	if w := data.Written(); len(w) != 2 || w[1].Description != "Taxi" {
		t.Errorf("written = %+v", w)
	}
	if n := data.count("AddExpense"); n != 2 {
		t.Errorf("AddExpense calls = %d, want 2", n)
	}
	if n := data.count("GetExpenses"); n != 2 {
		t.Errorf("GetExpenses calls = %d, want 2", n)
	}
	if n := lists.expenseSets(); n != 2 {
		t.Errorf("list refreshed %d times, want 2", n)
	}
}

func TestSubmissionState_String(t *testing.T) {
	if StateUploading.String() != "uploading" || SubmissionState(99).String() != "unknown" {
		t.Error("unexpected state names")
	}
}
