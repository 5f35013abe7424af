package worker

import (
	"context"
	"errors"
	"fmt"

	"expensetracker/internal/amqp"
	applog "expensetracker/internal/log"
)

// RowAppender is the sheet side of the export.
type RowAppender interface {
	AppendExpense(ctx context.Context, msg *amqp.ExpenseCreatedMessage) error
}

// ExportWorker copies expense.created events into a spreadsheet.
type ExportWorker struct {
	sheets RowAppender
	logger *applog.Logger
}

func NewExportWorker(sheets RowAppender, logger *applog.Logger) *ExportWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &ExportWorker{
		sheets: sheets,
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleExpenseCreated appends one row per event. A returned error makes the
// consumer requeue the delivery.
func (w *ExportWorker) HandleExpenseCreated(ctx context.Context, msg *amqp.ExpenseCreatedMessage) error {
	if msg == nil {
		return errors.New("nil expense event")
	}
	fields := applog.NewFields().
		WithUser(msg.UserID).
		WithExpense(msg.Description, msg.Amount.StringFixed(2), msg.CategoryID, msg.CategoryName, msg.PhotoURL != "").
		WithOperation(applog.OpExport)

	if err := w.sheets.AppendExpense(ctx, msg); err != nil {
		w.logger.LogError(ctx, "Failed to export expense", err, applog.OpExport, fields)
		return fmt.Errorf("append to sheets: %w", err)
	}

	w.logger.InfoContext(ctx, "Exported expense", fields.ToSlice()...)
	return nil
}

// Run consumes events until ctx is cancelled or the consumer stops.
func (w *ExportWorker) Run(ctx context.Context, consumer Consumer) error {
	w.logger.InfoContext(ctx, "Export worker started")
	err := consumer.ConsumeExpenseCreated(ctx, w.HandleExpenseCreated)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consume expense events: %w", err)
	}
	w.logger.InfoContext(ctx, "Export worker stopped")
	return nil
}

// Consumer is satisfied by *amqp.Client.
type Consumer interface {
	ConsumeExpenseCreated(ctx context.Context, handler func(context.Context, *amqp.ExpenseCreatedMessage) error) error
}
