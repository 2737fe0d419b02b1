package services

import (
	"context"
	"fmt"

	"budgetwise/internal/core"
	"budgetwise/internal/ports"
)

// authorize is the single ownership check shared by every mutating operation.
func authorize(caller core.User, r core.Owned) error {
	if !caller.Owns(r) {
		return core.ErrNotOwner
	}
	return nil
}

// ownedCategory loads a category the caller may reference.
func ownedCategory(ctx context.Context, categories ports.CategoryStore, caller core.User, id int64) (core.Category, error) {
	c, err := categories.FindCategory(ctx, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("find category %d: %w", id, err)
	}
	if err := authorize(caller, c); err != nil {
		return core.Category{}, err
	}
	return c, nil
}
