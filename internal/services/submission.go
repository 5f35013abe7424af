package services

import (
	"context"
	"log/slog"
	"strings"

	"expensetracker/internal/core"
)

// SubmissionState is a step of the expense submission workflow.
type SubmissionState int

const (
	StateIdle SubmissionState = iota
	StateValidating
	StateUploading
	StateWriting
	StateRefreshing
	StateDone
	StateFailed
)

func (s SubmissionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateUploading:
		return "uploading"
	case StateWriting:
		return "writing"
	case StateRefreshing:
		return "refreshing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ExpenseForm holds the raw user input of the expense form.
type ExpenseForm struct {
	Description string
	Amount      string
	CategoryID  string
	Photo       *core.Photo
}

// Reset clears every field, including the selected photo.
func (f *ExpenseForm) Reset() {
	*f = ExpenseForm{}
}

// IsEmpty reports whether the form holds no input at all.
func (f *ExpenseForm) IsEmpty() bool {
	return f.Description == "" && f.Amount == "" && f.CategoryID == "" && f.Photo.IsEmpty()
}

func (f *ExpenseForm) entry() (core.ExpenseEntry, error) {
	var fields []core.FieldError
	desc := strings.TrimSpace(f.Description)
	if desc == "" {
		fields = append(fields, core.FieldError{Field: "description", Err: core.ErrEmptyDescription})
	}
	amount, err := core.ParseAmount(f.Amount)
	if err != nil {
		fields = append(fields, core.FieldError{Field: "amount", Err: err})
	}
	category := strings.TrimSpace(f.CategoryID)
	if category == "" {
		fields = append(fields, core.FieldError{Field: "category", Err: core.ErrNoCategory})
	}
	if len(fields) > 0 {
		return core.ExpenseEntry{}, &core.ValidationError{Fields: fields}
	}
	return core.ExpenseEntry{
		Description: desc,
		Amount:      amount,
		CategoryID:  category,
	}, nil
}

// Outcome describes a successful submission.
type Outcome struct {
	Entry core.ExpenseEntry
	// RefreshErr is set when the list refresh after the write failed.
	// The held list is stale but the expense was saved.
	RefreshErr error
}

// Message is the notification shown to the user.
func (o Outcome) Message() string {
	if o.Entry.HasPhoto() {
		return "Expense added with photo!"
	}
	return "Expense added!"
}

type SubmitterOption func(*Submitter)

// WithStateObserver registers fn to receive every state entered after Idle.
func WithStateObserver(fn func(SubmissionState)) SubmitterOption {
	return func(s *Submitter) {
		s.observe = fn
	}
}

func WithLogger(logger *slog.Logger) SubmitterOption {
	return func(s *Submitter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Submitter runs the expense submission workflow:
// validate, upload the photo if any, write the expense, refresh the list.
//
// Each step is awaited before the next one starts and any failure ends the
// attempt. Nothing is retried and concurrent submissions are not serialized.
type Submitter struct {
	ledger  *Ledger
	observe func(SubmissionState)
	logger  *slog.Logger
}

func NewSubmitter(ledger *Ledger, opts ...SubmitterOption) *Submitter {
	s := &Submitter{ledger: ledger, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit sends the form to the data service.
//
// Returned errors match core.ErrValidation, core.ErrUpload or core.ErrWrite.
// On a validation error no backend call is made and form is left as is.
// Once validation passes the form is cleared, whatever happens next.
func (s *Submitter) Submit(ctx context.Context, form *ExpenseForm) (Outcome, error) {
	s.enter(StateValidating)
	entry, err := form.entry()
	if err != nil {
		s.enter(StateFailed)
		return Outcome{}, err
	}

	photo := form.Photo
	form.Reset()

	data := s.ledger.data
	if !photo.IsEmpty() {
		s.enter(StateUploading)
		url, err := data.UploadPhoto(ctx, *photo)
		if err == nil && url == "" {
			err = core.ErrNoPhotoURL
		}
		if err != nil {
			s.logger.ErrorContext(ctx, "Photo upload failed", "photo", photo.Name, "error", err)
			s.enter(StateFailed)
			return Outcome{}, &core.UploadError{Err: err}
		}
		entry.PhotoURL = url
	}

	s.enter(StateWriting)
	if err := data.AddExpense(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "Failed to add expense",
			"description", entry.Description,
			"amount", entry.Amount.String(),
			"error", err)
		s.enter(StateFailed)
		return Outcome{}, &core.WriteError{Resource: "expense", Err: err}
	}

	s.enter(StateRefreshing)
	out := Outcome{Entry: entry}
	out.RefreshErr = s.ledger.RefreshExpenses(ctx)

	s.enter(StateDone)
	return out, nil
}

func (s *Submitter) enter(state SubmissionState) {
	if s.observe != nil {
		s.observe(state)
	}
}
