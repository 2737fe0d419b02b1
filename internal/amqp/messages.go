package amqp

import (
	"encoding/json"
	"strings"
	"time"
)

type EventType string

const (
	EventIncomeCreated   EventType = "income.created"
	EventIncomeUpdated   EventType = "income.updated"
	EventIncomeDeleted   EventType = "income.deleted"
	EventExpenseCreated  EventType = "expense.created"
	EventExpenseUpdated  EventType = "expense.updated"
	EventExpenseDeleted  EventType = "expense.deleted"
	EventBudgetUpserted  EventType = "budget.upserted"
	EventBudgetUpdated   EventType = "budget.updated"
	EventBudgetDeleted   EventType = "budget.deleted"
	EventCategoryCreated EventType = "category.created"
	EventCategoryDeleted EventType = "category.deleted"
)

// IsExpense reports whether the event describes an expense mutation.
func (t EventType) IsExpense() bool {
	return strings.HasPrefix(string(t), "expense.")
}

// LedgerEvent announces a committed change to a user's ledger. It carries
// enough of the record for consumers to react without reading it back.
type LedgerEvent struct {
	Type       EventType `json:"type"`
	UserID     int64     `json:"user_id"`
	EntityID   int64     `json:"entity_id"`
	CategoryID int64     `json:"category_id,omitempty"`
	Month      int       `json:"month,omitempty"`
	Year       int       `json:"year,omitempty"`
	Amount     string    `json:"amount,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewLedgerEvent(t EventType, userID, entityID int64) *LedgerEvent {
	return &LedgerEvent{
		Type:      t,
		UserID:    userID,
		EntityID:  entityID,
		Timestamp: time.Now(),
	}
}

func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
