package storage

import (
	"context"
	"fmt"

	"budgetwise/internal/core"
)

const selectBudgetSQL = `
	SELECT b.id, b.amount, b.month, b.year, b.user_id, c.id, c.name, c.type, c.user_id
	  FROM budgets b
	  JOIN categories c ON c.id = b.category_id`

func scanBudget(row rowScanner) (core.Budget, error) {
	var b core.Budget
	err := row.Scan(&b.ID, &b.Amount, &b.Month, &b.Year, &b.UserID,
		&b.Category.ID, &b.Category.Name, &b.Category.Type, &b.Category.UserID)
	return b, err
}

func (r *SQLiteRepository) FindBudget(ctx context.Context, id int64) (core.Budget, error) {
	b, err := scanBudget(r.db.QueryRowContext(ctx, selectBudgetSQL+` WHERE b.id = ?`, id))
	if err != nil {
		return core.Budget{}, notFound(err, core.ErrBudgetNotFound)
	}
	return b, nil
}

func (r *SQLiteRepository) FindBudgetByKey(ctx context.Context, key core.BudgetKey) (core.Budget, error) {
	b, err := scanBudget(r.db.QueryRowContext(ctx,
		selectBudgetSQL+` WHERE b.user_id = ? AND b.category_id = ? AND b.month = ? AND b.year = ?`,
		key.UserID, key.CategoryID, key.Month, key.Year))
	if err != nil {
		return core.Budget{}, notFound(err, core.ErrNoBudgetForPeriod)
	}
	return b, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, selectBudgetSQL+` WHERE b.user_id = ? ORDER BY b.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	out := make([]core.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpsertBudget is one conditional write against the unique key index, so
// concurrent callers for the same key converge on a single row.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO budgets (amount, month, year, category_id, user_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, category_id, month, year) DO UPDATE SET amount = excluded.amount
		RETURNING id`,
		b.Amount, b.Month, b.Year, b.Category.ID, b.UserID,
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return core.Budget{}, core.ErrCategoryNotFound
		}
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	return r.FindBudget(ctx, id)
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET amount = ?, month = ?, year = ?, category_id = ? WHERE id = ?`,
		b.Amount, b.Month, b.Year, b.Category.ID, b.ID)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return core.Budget{}, core.ErrDuplicateBudget
		case isForeignKeyViolation(err):
			return core.Budget{}, core.ErrCategoryNotFound
		}
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	if err := checkAffected(res, core.ErrBudgetNotFound); err != nil {
		return core.Budget{}, err
	}
	return r.FindBudget(ctx, b.ID)
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return checkAffected(res, core.ErrBudgetNotFound)
}
