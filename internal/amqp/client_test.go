package amqp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

type fakeDelivery struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (d *fakeDelivery) Ack(bool) error {
	d.acked = true
	return nil
}

func (d *fakeDelivery) Nack(_ bool, requeue bool) error {
	d.nacked = true
	d.requeued = requeue
	return nil
}

func validBody(t *testing.T) []byte {
	t.Helper()
	msg := NewExpenseCreatedMessage(
		core.User{ID: "u1", Email: "a@b.c"},
		core.ExpenseEntry{Description: "Lunch", Amount: decimal.RequireFromString("45.50"), CategoryID: "c1"},
		"Food",
	)
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	return body
}

func TestSettle(t *testing.T) {
	tests := []struct {
		name        string
		body        func(t *testing.T) []byte
		handlerErr  error
		wantAck     bool
		wantRequeue bool
		wantCalled  bool
	}{
		{
			name:       "handled message is acked",
			body:       validBody,
			wantAck:    true,
			wantCalled: true,
		},
		{
			name:        "handler error requeues",
			body:        validBody,
			handlerErr:  errors.New("sheets unavailable"),
			wantRequeue: true,
			wantCalled:  true,
		},
		{
			name: "malformed body is dropped",
			body: func(*testing.T) []byte { return []byte(`{"event":`) },
		},
		{
			name: "wrong event type is dropped",
			body: func(*testing.T) []byte {
				return []byte(`{"event":"expense.deleted","description":"x","amount":"1"}`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDelivery{}
			called := false
			settle(context.Background(), d, tt.body(t), func(context.Context, *ExpenseCreatedMessage) error {
				called = true
				return tt.handlerErr
			})

			if called != tt.wantCalled {
				t.Errorf("handler called = %v, want %v", called, tt.wantCalled)
			}
			if d.acked != tt.wantAck {
				t.Errorf("acked = %v, want %v", d.acked, tt.wantAck)
			}
			if !tt.wantAck && !d.nacked {
				t.Error("expected message to be nacked")
			}
			if d.requeued != tt.wantRequeue {
				t.Errorf("requeued = %v, want %v", d.requeued, tt.wantRequeue)
			}
		})
	}
}

func TestNewExpenseCreatedMessage(t *testing.T) {
	entry := core.ExpenseEntry{
		Description: "Taxi",
		Amount:      decimal.RequireFromString("12.30"),
		CategoryID:  "c9",
		PhotoURL:    "https://example.test/p.jpg",
	}
	msg := NewExpenseCreatedMessage(core.User{ID: "u7"}, entry, "Transport")

	if msg.Event != EventExpenseCreated {
		t.Errorf("Event = %q, want %q", msg.Event, EventExpenseCreated)
	}
	if msg.UserID != "u7" || msg.CategoryName != "Transport" || msg.PhotoURL != entry.PhotoURL {
		t.Errorf("unexpected message %+v", msg)
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestExpenseCreatedMessageFromJSON_KeepsDecimalPrecision(t *testing.T) {
	parsed, err := ExpenseCreatedMessageFromJSON(validBody(t))
	if err != nil {
		t.Fatalf("ExpenseCreatedMessageFromJSON() error = %v", err)
	}
	if !parsed.Amount.Equal(decimal.RequireFromString("45.5")) {
		t.Errorf("Amount = %s, want 45.5", parsed.Amount)
	}
}

func TestExpenseCreatedMessageFromJSON_RejectsIncomplete(t *testing.T) {
	_, err := ExpenseCreatedMessageFromJSON([]byte(`{"event":"expense.created","amount":"0"}`))
	if err == nil {
		t.Error("expected error for incomplete event")
	}
}
