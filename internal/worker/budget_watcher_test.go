package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"budgetwise/internal/amqp"
	"budgetwise/internal/auth"
	"budgetwise/internal/core"
	"budgetwise/internal/services"
	"budgetwise/internal/storage/memory"
)

func TestBudgetWatcher(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	_, err := store.CreateUser(ctx, "alice@example.com")
	require.NoError(t, err)
	users := auth.NewDirectory(store, 8, time.Minute)

	var published []*amqp.LedgerEvent
	pub := publisherFunc(func(_ context.Context, evt *amqp.LedgerEvent) error {
		published = append(published, evt)
		return nil
	})

	cats := services.NewCategoryService(users, store, pub)
	expenses := services.NewExpenseService(users, store, store.Expenses(), pub)
	budgets := services.NewBudgetService(users, store, store, store.Expenses(), pub, services.StatusAccessOwner)

	food, err := cats.Create(ctx, "alice@example.com", "Food", "EXPENSE")
	require.NoError(t, err)
	_, err = budgets.Upsert(ctx, "alice@example.com", services.BudgetInput{
		Amount: decimal.NewFromInt(100), CategoryID: &food.ID, Month: 3, Year: 2024,
	})
	require.NoError(t, err)

	var alerts []core.BudgetStatus
	w := NewBudgetWatcher(budgets, func(_ context.Context, _ *amqp.LedgerEvent, st core.BudgetStatus) {
		alerts = append(alerts, st)
	})

	add := func(amount int64, month int) {
		t.Helper()
		_, err := expenses.Add(ctx, "alice@example.com", services.TransactionInput{
			Amount: decimal.NewFromInt(amount), Date: core.NewDate(2024, month, 10), CategoryID: &food.ID,
		})
		require.NoError(t, err)
		require.NoError(t, w.HandleLedgerEvent(ctx, published[len(published)-1]))
	}

	add(60, 3)
	require.Empty(t, alerts)

	add(40, 3)
	require.Empty(t, alerts, "spending exactly the budget is not an overspend")

	add(5, 3)
	require.Len(t, alerts, 1)
	require.Equal(t, "Food", alerts[0].CategoryName)
	require.Equal(t, "-5.00", alerts[0].RemainingAmount.StringFixed(2))

	// April has no budget.
	add(500, 4)
	require.Len(t, alerts, 1)

	// Non-expense events are ignored.
	require.NoError(t, w.HandleLedgerEvent(ctx, published[0]))

	require.Equal(t, Stats{Processed: 3, Skipped: 2, Overspent: 1}, w.Stats())
}

func TestBudgetWatcherSurfacesStoreErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	w := NewBudgetWatcher(statusFunc(func(context.Context, int64, int64, int, int) (core.BudgetStatus, error) {
		return core.BudgetStatus{}, boom
	}), nil)

	evt := amqp.NewLedgerEvent(amqp.EventExpenseCreated, 1, 2)
	evt.CategoryID, evt.Month, evt.Year = 3, 1, 2024
	require.ErrorIs(t, w.HandleLedgerEvent(context.Background(), evt), boom)

	uncategorized := amqp.NewLedgerEvent(amqp.EventExpenseCreated, 1, 3)
	require.NoError(t, w.HandleLedgerEvent(context.Background(), uncategorized))
	require.Equal(t, int64(1), w.Stats().Skipped)
}

type publisherFunc func(context.Context, *amqp.LedgerEvent) error

func (f publisherFunc) PublishLedgerEvent(ctx context.Context, evt *amqp.LedgerEvent) error {
	return f(ctx, evt)
}

type statusFunc func(context.Context, int64, int64, int, int) (core.BudgetStatus, error)

func (f statusFunc) StatusForUser(ctx context.Context, userID, categoryID int64, month, year int) (core.BudgetStatus, error) {
	return f(ctx, userID, categoryID, month, year)
}
