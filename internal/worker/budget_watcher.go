package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"budgetwise/internal/amqp"
	"budgetwise/internal/core"
	"budgetwise/internal/log"
)

// StatusReader computes the status of one budget period.
// *services.BudgetService implements it.
type StatusReader interface {
	StatusForUser(ctx context.Context, userID, categoryID int64, month, year int) (core.BudgetStatus, error)
}

// OverspendFunc is called for every expense event that leaves its budget
// over.
type OverspendFunc func(ctx context.Context, evt *amqp.LedgerEvent, status core.BudgetStatus)

// Stats counts what the watcher has seen since it started.
type Stats struct {
	Processed int64
	Skipped   int64
	Overspent int64
}

// BudgetWatcher consumes ledger events and flags expenses that push a
// category over its monthly budget.
type BudgetWatcher struct {
	budgets   StatusReader
	onOver    OverspendFunc
	processed atomic.Int64
	skipped   atomic.Int64
	overspent atomic.Int64
}

// NewBudgetWatcher returns a watcher that logs a warning on overspend.
// onOver may be nil.
func NewBudgetWatcher(budgets StatusReader, onOver OverspendFunc) *BudgetWatcher {
	if onOver == nil {
		onOver = logOverspend
	}
	return &BudgetWatcher{budgets: budgets, onOver: onOver}
}

// HandleLedgerEvent is the consumer callback. Returning an error requeues the
// message, so only transient store failures are reported.
func (w *BudgetWatcher) HandleLedgerEvent(ctx context.Context, evt *amqp.LedgerEvent) error {
	if !relevant(evt) {
		w.skipped.Add(1)
		return nil
	}

	slog.DebugContext(ctx, "Processing expense event",
		log.FieldComponent, log.ComponentWorker,
		log.FieldEventType, evt.Type,
		log.FieldTransactionID, evt.EntityID)

	status, err := w.budgets.StatusForUser(ctx, evt.UserID, evt.CategoryID, evt.Month, evt.Year)
	switch {
	case errors.Is(err, core.ErrNotFound), core.IsValidation(err):
		// No budget for this period, nothing to compare against.
		w.skipped.Add(1)
		return nil
	case err != nil:
		return fmt.Errorf("budget status for user %d category %d: %w", evt.UserID, evt.CategoryID, err)
	}

	w.processed.Add(1)
	if status.Status == core.OverBudget {
		w.overspent.Add(1)
		w.onOver(ctx, evt, status)
	}
	return nil
}

func (w *BudgetWatcher) Stats() Stats {
	return Stats{
		Processed: w.processed.Load(),
		Skipped:   w.skipped.Load(),
		Overspent: w.overspent.Load(),
	}
}

// relevant keeps categorized expense creations and updates. Deletions only
// lower spending.
func relevant(evt *amqp.LedgerEvent) bool {
	if evt == nil || evt.CategoryID == 0 {
		return false
	}
	return evt.Type == amqp.EventExpenseCreated || evt.Type == amqp.EventExpenseUpdated
}

func logOverspend(ctx context.Context, evt *amqp.LedgerEvent, status core.BudgetStatus) {
	slog.WarnContext(ctx, "Budget exceeded",
		log.FieldComponent, log.ComponentWorker,
		log.FieldUserID, evt.UserID,
		log.FieldCategoryID, evt.CategoryID,
		log.FieldMonth, evt.Month,
		log.FieldYear, evt.Year,
		"category", status.CategoryName,
		"budget", status.BudgetAmount.StringFixed(2),
		"spent", status.ActualSpent.StringFixed(2),
		"remaining", status.RemainingAmount.StringFixed(2))
}
