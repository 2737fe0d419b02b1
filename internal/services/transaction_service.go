package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"budgetwise/internal/amqp"
	"budgetwise/internal/core"
	"budgetwise/internal/log"
	"budgetwise/internal/ports"
)

// TransactionInput carries the fields of an add or update request.
// CategoryID is optional: nil leaves the transaction uncategorized on add and
// keeps the current category on update.
type TransactionInput struct {
	Amount      decimal.Decimal
	Description string
	Date        core.Date
	CategoryID  *int64
}

// TransactionService handles one kind of transaction. Incomes and expenses
// share the same rules.
type TransactionService struct {
	kind       core.TransactionKind
	users      ports.UserResolver
	categories ports.CategoryStore
	store      ports.TransactionStore
	events     Publisher
}

func NewIncomeService(users ports.UserResolver, categories ports.CategoryStore, incomes ports.TransactionStore, events Publisher) *TransactionService {
	return &TransactionService{
		kind:       core.KindIncome,
		users:      users,
		categories: categories,
		store:      incomes,
		events:     events,
	}
}

func NewExpenseService(users ports.UserResolver, categories ports.CategoryStore, expenses ports.TransactionStore, events Publisher) *TransactionService {
	return &TransactionService{
		kind:       core.KindExpense,
		users:      users,
		categories: categories,
		store:      expenses,
		events:     events,
	}
}

func (s *TransactionService) Kind() core.TransactionKind { return s.kind }

func (s *TransactionService) Add(ctx context.Context, caller core.Identity, in TransactionInput) (core.Transaction, error) {
	u, err := s.users.ResolveUser(ctx, caller)
	if err != nil {
		return core.Transaction{}, err
	}

	tx := core.Transaction{
		Kind:        s.kind,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date,
		UserID:      u.ID,
	}
	if in.CategoryID != nil {
		c, err := ownedCategory(ctx, s.categories, u, *in.CategoryID)
		if err != nil {
			return core.Transaction{}, err
		}
		tx.Category = &c
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	tx, err = s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save %s: %w", s.kind, err)
	}

	slog.InfoContext(ctx, "Transaction created", log.NewFields().
		WithComponent(log.ComponentTransaction).
		WithOperation(log.OpCreate).
		WithUser(u.ID).
		WithTransaction(s.kind.String(), tx.ID, tx.Amount.StringFixed(2)).
		ToSlice()...)
	publish(ctx, s.events, transactionEvent(s.eventType(log.OpCreate), tx))
	return tx, nil
}

func (s *TransactionService) List(ctx context.Context, caller core.Identity) ([]core.Transaction, error) {
	u, err := s.users.ResolveUser(ctx, caller)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.ListTransactions(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.kind, err)
	}
	return txs, nil
}

// Update overwrites amount, description and date. The category is replaced
// only when in.CategoryID is set.
func (s *TransactionService) Update(ctx context.Context, id int64, caller core.Identity, in TransactionInput) (core.Transaction, error) {
	u, tx, err := s.owned(ctx, id, caller)
	if err != nil {
		return core.Transaction{}, err
	}

	tx.Amount = in.Amount
	tx.Description = strings.TrimSpace(in.Description)
	tx.Date = in.Date
	if in.CategoryID != nil {
		c, err := ownedCategory(ctx, s.categories, u, *in.CategoryID)
		if err != nil {
			return core.Transaction{}, err
		}
		tx.Category = &c
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	tx, err = s.store.UpdateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update %s %d: %w", s.kind, id, err)
	}

	slog.InfoContext(ctx, "Transaction updated", log.NewFields().
		WithComponent(log.ComponentTransaction).
		WithOperation(log.OpUpdate).
		WithUser(u.ID).
		WithTransaction(s.kind.String(), tx.ID, tx.Amount.StringFixed(2)).
		ToSlice()...)
	publish(ctx, s.events, transactionEvent(s.eventType(log.OpUpdate), tx))
	return tx, nil
}

func (s *TransactionService) Delete(ctx context.Context, id int64, caller core.Identity) error {
	u, tx, err := s.owned(ctx, id, caller)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, tx.ID); err != nil {
		return fmt.Errorf("delete %s %d: %w", s.kind, id, err)
	}

	slog.InfoContext(ctx, "Transaction deleted", log.NewFields().
		WithComponent(log.ComponentTransaction).
		WithOperation(log.OpDelete).
		WithUser(u.ID).
		WithTransaction(s.kind.String(), tx.ID, tx.Amount.StringFixed(2)).
		ToSlice()...)
	publish(ctx, s.events, transactionEvent(s.eventType(log.OpDelete), tx))
	return nil
}

// owned loads transaction id and checks that the caller owns it.
func (s *TransactionService) owned(ctx context.Context, id int64, caller core.Identity) (core.User, core.Transaction, error) {
	u, err := s.users.ResolveUser(ctx, caller)
	if err != nil {
		return core.User{}, core.Transaction{}, err
	}
	tx, err := s.store.FindTransaction(ctx, id)
	if err != nil {
		return core.User{}, core.Transaction{}, fmt.Errorf("find %s %d: %w", s.kind, id, err)
	}
	if err := authorize(u, tx); err != nil {
		return core.User{}, core.Transaction{}, err
	}
	return u, tx, nil
}

func (s *TransactionService) eventType(op string) amqp.EventType {
	switch op {
	case log.OpCreate:
		if s.kind == core.KindIncome {
			return amqp.EventIncomeCreated
		}
		return amqp.EventExpenseCreated
	case log.OpUpdate:
		if s.kind == core.KindIncome {
			return amqp.EventIncomeUpdated
		}
		return amqp.EventExpenseUpdated
	default:
		if s.kind == core.KindIncome {
			return amqp.EventIncomeDeleted
		}
		return amqp.EventExpenseDeleted
	}
}
