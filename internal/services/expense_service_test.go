package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
)

type fakePublisher struct {
	msgs []*amqp.ExpenseCreatedMessage
	err  error
}

func (p *fakePublisher) PublishExpenseCreated(_ context.Context, msg *amqp.ExpenseCreatedMessage) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

func TestNewPublishingDataService_NilPublisher(t *testing.T) {
	data := &fakeData{}
	if got := NewPublishingDataService(data, nil, core.User{}, nil); got != data {
		t.Error("expected the wrapped service back when publishing is disabled")
	}
}

func TestPublishingDataService_AddExpense(t *testing.T) {
	entry := core.ExpenseEntry{Description: "Lunch", Amount: decimal.RequireFromString("45.50"), CategoryID: "c1"}
	names := func(id string) string { return core.CategoryName([]core.Category{{ID: "c1", Name: "Food"}}, id) }

	t.Run("publishes after write", func(t *testing.T) {
		pub := &fakePublisher{}
		svc := NewPublishingDataService(&fakeData{}, pub, core.User{ID: "u1"}, names)
		if err := svc.AddExpense(context.Background(), entry); err != nil {
			t.Fatalf("AddExpense() error = %v", err)
		}
		if len(pub.msgs) != 1 || pub.msgs[0].CategoryName != "Food" || pub.msgs[0].UserID != "u1" {
			t.Fatalf("unexpected messages %+v", pub.msgs)
		}
	})

	t.Run("publish failure is swallowed", func(t *testing.T) {
		pub := &fakePublisher{err: errors.New("broker down")}
		svc := NewPublishingDataService(&fakeData{}, pub, core.User{ID: "u1"}, names)
		if err := svc.AddExpense(context.Background(), entry); err != nil {
			t.Fatalf("publish failure leaked: %v", err)
		}
	})

	t.Run("write failure publishes nothing", func(t *testing.T) {
		pub := &fakePublisher{}
		svc := NewPublishingDataService(&fakeData{addExpErr: errors.New("denied")}, pub, core.User{}, names)
		if err := svc.AddExpense(context.Background(), entry); err == nil {
			t.Fatal("expected write error")
		}
		if len(pub.msgs) != 0 {
			t.Error("no event should be published for a failed write")
		}
	})
}
