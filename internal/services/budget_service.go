package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"budgetwise/internal/amqp"
	"budgetwise/internal/core"
	"budgetwise/internal/log"
	"budgetwise/internal/ports"
)

// StatusAccess controls who may read a budget status.
type StatusAccess string

const (
	// StatusAccessOwner requires an authenticated caller reading their own
	// status.
	StatusAccessOwner StatusAccess = "owner"
	// StatusAccessOpen accepts any userId without authentication.
	StatusAccessOpen StatusAccess = "open"
)

// ParseStatusAccess returns the access policy named by s.
func ParseStatusAccess(s string) (StatusAccess, error) {
	switch StatusAccess(s) {
	case StatusAccessOwner, StatusAccessOpen:
		return StatusAccess(s), nil
	case "":
		return StatusAccessOwner, nil
	default:
		return "", fmt.Errorf("unknown budget status access %q (want owner or open)", s)
	}
}

// BudgetInput carries the fields of an upsert or update request.
type BudgetInput struct {
	Amount     decimal.Decimal
	CategoryID *int64
	Month      int
	Year       int
}

// StatusQuery selects one budget period. UserID may be nil when the caller
// is authenticated, meaning the caller.
type StatusQuery struct {
	UserID     *int64
	CategoryID int64
	Month      int
	Year       int
}

type BudgetService struct {
	users      ports.UserResolver
	categories ports.CategoryStore
	budgets    ports.BudgetStore
	expenses   ports.TransactionStore
	events     Publisher
	access     StatusAccess
}

func NewBudgetService(users ports.UserResolver, categories ports.CategoryStore, budgets ports.BudgetStore, expenses ports.TransactionStore, events Publisher, access StatusAccess) *BudgetService {
	if access == "" {
		access = StatusAccessOwner
	}
	return &BudgetService{
		users:      users,
		categories: categories,
		budgets:    budgets,
		expenses:   expenses,
		events:     events,
		access:     access,
	}
}

func (s *BudgetService) Access() StatusAccess { return s.access }

// Upsert stores the caller's budget for a category and month. An existing
// budget for the same period gets the new amount.
func (s *BudgetService) Upsert(ctx context.Context, caller core.Identity, in BudgetInput) (core.Budget, error) {
	u, err := s.users.ResolveUser(ctx, caller)
	if err != nil {
		return core.Budget{}, err
	}
	if in.CategoryID == nil {
		return core.Budget{}, core.ErrMissingCategory
	}
	c, err := ownedCategory(ctx, s.categories, u, *in.CategoryID)
	if err != nil {
		return core.Budget{}, err
	}

	b := core.Budget{
		Amount:   in.Amount,
		Month:    in.Month,
		Year:     in.Year,
		Category: c,
		UserID:   u.ID,
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	b, err = s.budgets.UpsertBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget upserted", log.NewFields().
		WithComponent(log.ComponentBudget).
		WithOperation(log.OpUpsert).
		WithBudgetKey(b.UserID, b.Category.ID, b.Month, b.Year).
		ToSlice()...)
	publish(ctx, s.events, budgetEvent(amqp.EventBudgetUpserted, b))
	return b, nil
}

func (s *BudgetService) List(ctx context.Context, caller core.Identity) ([]core.Budget, error) {
	u, err := s.users.ResolveUser(ctx, caller)
	if err != nil {
		return nil, err
	}
	budgets, err := s.budgets.ListBudgets(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

// Update overwrites amount, month and year. The category is replaced only
// when in.CategoryID is set. Moving onto a period that already has a budget
// fails with core.ErrConflict.
func (s *BudgetService) Update(ctx context.Context, id int64, caller core.Identity, in BudgetInput) (core.Budget, error) {
	u, b, err := s.owned(ctx, id, caller)
	if err != nil {
		return core.Budget{}, err
	}

	b.Amount = in.Amount
	b.Month = in.Month
	b.Year = in.Year
	if in.CategoryID != nil {
		c, err := ownedCategory(ctx, s.categories, u, *in.CategoryID)
		if err != nil {
			return core.Budget{}, err
		}
		b.Category = c
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	b, err = s.budgets.UpdateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Budget updated", log.NewFields().
		WithComponent(log.ComponentBudget).
		WithOperation(log.OpUpdate).
		WithBudgetKey(b.UserID, b.Category.ID, b.Month, b.Year).
		ToSlice()...)
	publish(ctx, s.events, budgetEvent(amqp.EventBudgetUpdated, b))
	return b, nil
}

func (s *BudgetService) Delete(ctx context.Context, id int64, caller core.Identity) error {
	_, b, err := s.owned(ctx, id, caller)
	if err != nil {
		return err
	}
	if err := s.budgets.DeleteBudget(ctx, b.ID); err != nil {
		return fmt.Errorf("delete budget %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Budget deleted",
		log.FieldComponent, log.ComponentBudget,
		log.FieldBudgetID, b.ID,
		log.FieldUserID, b.UserID)
	publish(ctx, s.events, budgetEvent(amqp.EventBudgetDeleted, b))
	return nil
}

// Status applies the configured access policy and then reports spending for
// the selected period. caller is empty for unauthenticated requests.
func (s *BudgetService) Status(ctx context.Context, caller core.Identity, q StatusQuery) (core.BudgetStatus, error) {
	switch {
	case s.access == StatusAccessOpen && caller == "":
		if q.UserID == nil {
			return core.BudgetStatus{}, core.ErrMissingUser
		}
	default:
		u, err := s.users.ResolveUser(ctx, caller)
		if err != nil {
			return core.BudgetStatus{}, err
		}
		if q.UserID == nil {
			q.UserID = &u.ID
		}
		if s.access == StatusAccessOwner && *q.UserID != u.ID {
			return core.BudgetStatus{}, core.ErrNotOwner
		}
	}
	return s.StatusForUser(ctx, *q.UserID, q.CategoryID, q.Month, q.Year)
}

// StatusForUser compares the budget for (userID, categoryID, month, year)
// against the user's expenses in that category and month. It fails with
// core.ErrNoBudgetForPeriod when no budget exists, whatever was spent.
func (s *BudgetService) StatusForUser(ctx context.Context, userID, categoryID int64, month, year int) (core.BudgetStatus, error) {
	if err := core.ValidateMonth(month); err != nil {
		return core.BudgetStatus{}, err
	}
	if err := core.ValidateYear(year); err != nil {
		return core.BudgetStatus{}, err
	}

	b, err := s.budgets.FindBudgetByKey(ctx, core.BudgetKey{
		UserID:     userID,
		CategoryID: categoryID,
		Month:      month,
		Year:       year,
	})
	if err != nil {
		return core.BudgetStatus{}, err
	}

	expenses, err := s.expenses.ListTransactions(ctx, userID)
	if err != nil {
		return core.BudgetStatus{}, fmt.Errorf("list expenses: %w", err)
	}

	status := core.ComputeBudgetStatus(b, expenses)
	slog.DebugContext(ctx, "Budget status computed", log.NewFields().
		WithComponent(log.ComponentBudget).
		WithOperation(log.OpStatus).
		WithBudgetKey(userID, categoryID, month, year).
		ToSlice()...)
	return status, nil
}

func (s *BudgetService) owned(ctx context.Context, id int64, caller core.Identity) (core.User, core.Budget, error) {
	u, err := s.users.ResolveUser(ctx, caller)
	if err != nil {
		return core.User{}, core.Budget{}, err
	}
	b, err := s.budgets.FindBudget(ctx, id)
	if err != nil {
		return core.User{}, core.Budget{}, fmt.Errorf("find budget %d: %w", id, err)
	}
	if err := authorize(u, b); err != nil {
		return core.User{}, core.Budget{}, err
	}
	return u, b, nil
}
