package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

// EventExpenseCreated is the type carried by every ExpenseCreatedMessage.
const EventExpenseCreated = "expense.created"

// ExpenseCreatedMessage is published after an expense was written to the backend.
// It carries everything needed to export the row, so consumers never call back.
type ExpenseCreatedMessage struct {
	Event        string          `json:"event"`
	UserID       string          `json:"user_id"`
	UserEmail    string          `json:"user_email,omitempty"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	PhotoURL     string          `json:"photo_url,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}

// NewExpenseCreatedMessage builds the event for a freshly written entry.
func NewExpenseCreatedMessage(user core.User, e core.ExpenseEntry, categoryName string) *ExpenseCreatedMessage {
	return &ExpenseCreatedMessage{
		Event:        EventExpenseCreated,
		UserID:       user.ID,
		UserEmail:    user.Email,
		Description:  e.Description,
		Amount:       e.Amount,
		CategoryID:   e.CategoryID,
		CategoryName: categoryName,
		PhotoURL:     e.PhotoURL,
		Timestamp:    time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseCreatedMessageFromJSON decodes and sanity-checks a message body.
func ExpenseCreatedMessageFromJSON(data []byte) (*ExpenseCreatedMessage, error) {
	var msg ExpenseCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Event != EventExpenseCreated {
		return nil, errors.New("unexpected event type: " + msg.Event)
	}
	if msg.Description == "" || !msg.Amount.IsPositive() {
		return nil, errors.New("incomplete expense event")
	}
	return &msg, nil
}
