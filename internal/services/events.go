package services

import (
	"context"
	"log/slog"

	"budgetwise/internal/amqp"
	"budgetwise/internal/core"
	"budgetwise/internal/log"
)

// Publisher announces committed ledger changes. *amqp.Client implements it.
type Publisher interface {
	PublishLedgerEvent(ctx context.Context, evt *amqp.LedgerEvent) error
}

var _ Publisher = (*amqp.Client)(nil)

// publish sends evt when a publisher is configured. The store write has
// already succeeded, so failures are only logged.
func publish(ctx context.Context, p Publisher, evt *amqp.LedgerEvent) {
	if p == nil {
		return
	}
	if err := p.PublishLedgerEvent(ctx, evt); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldComponent, log.ComponentAMQP,
			log.FieldEventType, evt.Type,
			log.FieldUserID, evt.UserID,
			log.FieldError, err)
	}
}

func transactionEvent(t amqp.EventType, tx core.Transaction) *amqp.LedgerEvent {
	evt := amqp.NewLedgerEvent(t, tx.UserID, tx.ID)
	evt.CategoryID = tx.CategoryID()
	evt.Month = tx.Date.Month()
	evt.Year = tx.Date.Year()
	evt.Amount = tx.Amount.StringFixed(2)
	return evt
}

func budgetEvent(t amqp.EventType, b core.Budget) *amqp.LedgerEvent {
	evt := amqp.NewLedgerEvent(t, b.UserID, b.ID)
	evt.CategoryID = b.Category.ID
	evt.Month = b.Month
	evt.Year = b.Year
	evt.Amount = b.Amount.StringFixed(2)
	return evt
}

func categoryEvent(t amqp.EventType, c core.Category) *amqp.LedgerEvent {
	evt := amqp.NewLedgerEvent(t, c.UserID, c.ID)
	evt.CategoryID = c.ID
	return evt
}
