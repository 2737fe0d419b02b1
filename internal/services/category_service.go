package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"budgetwise/internal/amqp"
	"budgetwise/internal/core"
	"budgetwise/internal/log"
	"budgetwise/internal/ports"
)

type CategoryService struct {
	users      ports.UserResolver
	categories ports.CategoryStore
	events     Publisher
}

func NewCategoryService(users ports.UserResolver, categories ports.CategoryStore, events Publisher) *CategoryService {
	return &CategoryService{users: users, categories: categories, events: events}
}

func (s *CategoryService) List(ctx context.Context, caller core.Identity) ([]core.Category, error) {
	u, err := s.users.ResolveUser(ctx, caller)
	if err != nil {
		return nil, err
	}
	cats, err := s.categories.ListCategories(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// Create adds a category for the caller. typeLiteral is INCOME or EXPENSE in
// any letter case.
func (s *CategoryService) Create(ctx context.Context, caller core.Identity, name, typeLiteral string) (core.Category, error) {
	u, err := s.users.ResolveUser(ctx, caller)
	if err != nil {
		return core.Category{}, err
	}
	typ, err := core.ParseCategoryType(typeLiteral)
	if err != nil {
		return core.Category{}, err
	}
	c := core.Category{Name: strings.TrimSpace(name), Type: typ, UserID: u.ID}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	c, err = s.categories.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category created",
		log.FieldComponent, log.ComponentCategory,
		log.FieldUserID, u.ID,
		log.FieldCategoryID, c.ID,
		"type", c.Type)
	publish(ctx, s.events, categoryEvent(amqp.EventCategoryCreated, c))
	return c, nil
}

// Delete removes an owned category together with its budgets. Transactions
// that used it become uncategorized.
func (s *CategoryService) Delete(ctx context.Context, id int64, caller core.Identity) error {
	u, err := s.users.ResolveUser(ctx, caller)
	if err != nil {
		return err
	}
	c, err := ownedCategory(ctx, s.categories, u, id)
	if err != nil {
		return err
	}
	if err := s.categories.DeleteCategory(ctx, c.ID); err != nil {
		return fmt.Errorf("delete category %d: %w", c.ID, err)
	}

	slog.InfoContext(ctx, "Category deleted",
		log.FieldComponent, log.ComponentCategory,
		log.FieldUserID, u.ID,
		log.FieldCategoryID, c.ID)
	publish(ctx, s.events, categoryEvent(amqp.EventCategoryDeleted, c))
	return nil
}
