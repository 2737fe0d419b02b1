package storage

import (
	"context"
	"fmt"
	"strings"

	"budgetwise/internal/core"
)

func (r *SQLiteRepository) FindCategory(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, type, user_id FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Type, &c.UserID)
	if err != nil {
		return core.Category{}, notFound(err, core.ErrCategoryNotFound)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, user_id FROM categories WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := make([]core.Category, 0)
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.UserID); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	c.Name = strings.TrimSpace(c.Name)

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO categories (name, type, user_id) VALUES (?, ?, ?) RETURNING id`,
		c.Name, string(c.Type), c.UserID,
	).Scan(&c.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return core.Category{}, core.ErrUserNotFound
		}
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// DeleteCategory relies on the schema's foreign keys: budgets cascade and
// transactions are set to uncategorized.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return checkAffected(res, core.ErrCategoryNotFound)
}
