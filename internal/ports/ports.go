package ports

import (
	"context"

	"budgetwise/internal/core"
)

// Ports for outbound adapters. Implementations return an error matching
// core.ErrNotFound when a looked-up row does not exist.
type (
	UserStore interface {
		FindUserByEmail(ctx context.Context, email string) (core.User, error)
		FindUserByID(ctx context.Context, id int64) (core.User, error)
		CreateUser(ctx context.Context, email string) (core.User, error)
	}

	// UserResolver turns a caller identity into the user it belongs to.
	UserResolver interface {
		ResolveUser(ctx context.Context, id core.Identity) (core.User, error)
	}

	CategoryStore interface {
		FindCategory(ctx context.Context, id int64) (core.Category, error)
		ListCategories(ctx context.Context, userID int64) ([]core.Category, error)
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		// DeleteCategory removes the category and its budgets. Transactions
		// that referenced it become uncategorized.
		DeleteCategory(ctx context.Context, id int64) error
	}

	// TransactionStore holds one kind of transaction, incomes or expenses.
	TransactionStore interface {
		FindTransaction(ctx context.Context, id int64) (core.Transaction, error)
		ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error)
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id int64) error
	}

	BudgetStore interface {
		FindBudget(ctx context.Context, id int64) (core.Budget, error)
		FindBudgetByKey(ctx context.Context, key core.BudgetKey) (core.Budget, error)
		ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error)
		// UpsertBudget inserts the budget or overwrites the amount of the
		// row with the same key, in a single atomic write.
		UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		// UpdateBudget rewrites an existing row by id. Moving it onto a key
		// held by another row fails with core.ErrConflict.
		UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		DeleteBudget(ctx context.Context, id int64) error
	}

	// Store bundles every store a backend provides.
	Store interface {
		UserStore
		CategoryStore
		BudgetStore
		Incomes() TransactionStore
		Expenses() TransactionStore
		Ping(ctx context.Context) error
	}
)
