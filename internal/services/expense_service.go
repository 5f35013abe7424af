package services

import (
	"context"
	"log/slog"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/remote"
)

// EventPublisher delivers expense events to the message broker.
type EventPublisher interface {
	PublishExpenseCreated(ctx context.Context, msg *amqp.ExpenseCreatedMessage) error
}

// PublishingDataService wraps a DataService and publishes an expense.created
// event after every successful AddExpense. Publishing is best-effort: its
// failures are logged and never returned.
type PublishingDataService struct {
	remote.DataService
	publisher    EventPublisher
	user         core.User
	categoryName func(id string) string
}

// NewPublishingDataService returns data unchanged when publisher is nil.
func NewPublishingDataService(data remote.DataService, publisher EventPublisher, user core.User, categoryName func(id string) string) remote.DataService {
	if publisher == nil {
		return data
	}
	if categoryName == nil {
		categoryName = func(string) string { return core.UnknownCategoryName }
	}
	return &PublishingDataService{
		DataService:  data,
		publisher:    publisher,
		user:         user,
		categoryName: categoryName,
	}
}

// AddExpense writes the expense and then publishes the event.
func (s *PublishingDataService) AddExpense(ctx context.Context, e core.ExpenseEntry) error {
	if err := s.DataService.AddExpense(ctx, e); err != nil {
		return err
	}

	msg := amqp.NewExpenseCreatedMessage(s.user, e, s.categoryName(e.CategoryID))
	if err := s.publisher.PublishExpenseCreated(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"user_id", s.user.ID, "error", err)
		// The expense is saved; the export just misses this row.
	}
	return nil
}
