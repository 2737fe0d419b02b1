package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"budgetwise/internal/core"
)

func seed(t *testing.T) (*Store, core.User, core.Category) {
	t.Helper()
	ctx := context.Background()
	s := New()
	u, err := s.CreateUser(ctx, "Alice@Example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	c, err := s.CreateCategory(ctx, core.Category{Name: "Food", Type: core.CategoryExpense, UserID: u.ID})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return s, u, c
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s, u, _ := seed(t)

	if u.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", u.Email)
	}
	got, err := s.FindUserByEmail(ctx, "ALICE@example.com")
	if err != nil || got.ID != u.ID {
		t.Fatalf("find by email: %v %v", got, err)
	}
	if _, err := s.CreateUser(ctx, "alice@example.com"); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("duplicate user err = %v", err)
	}
	if _, err := s.FindUserByID(ctx, 999); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("missing user err = %v", err)
	}
}

func TestUpsertBudgetKeepsOneRowPerKey(t *testing.T) {
	ctx := context.Background()
	s, u, c := seed(t)

	b := core.Budget{Amount: decimal.NewFromInt(100), Month: 3, Year: 2024, Category: c, UserID: u.ID}
	first, err := s.UpsertBudget(ctx, b)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	b.Amount = decimal.NewFromInt(250)
	second, err := s.UpsertBudget(ctx, b)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("upsert created a second row: %d != %d", first.ID, second.ID)
	}

	all, _ := s.ListBudgets(ctx, u.ID)
	if len(all) != 1 || !all[0].Amount.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("unexpected budgets: %+v", all)
	}
	if all[0].Category.Name != "Food" {
		t.Fatalf("category not hydrated: %+v", all[0].Category)
	}
}

func TestConcurrentUpsertsSameKey(t *testing.T) {
	ctx := context.Background()
	s, u, c := seed(t)

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _ = s.UpsertBudget(ctx, core.Budget{
				Amount: decimal.NewFromInt(int64(n)), Month: 5, Year: 2024, Category: c, UserID: u.ID,
			})
		}(i)
	}
	wg.Wait()

	all, _ := s.ListBudgets(ctx, u.ID)
	if len(all) != 1 {
		t.Fatalf("expected exactly one budget, got %d", len(all))
	}
}

func TestUpdateBudgetOntoTakenKey(t *testing.T) {
	ctx := context.Background()
	s, u, c := seed(t)

	march, _ := s.UpsertBudget(ctx, core.Budget{Amount: decimal.NewFromInt(1), Month: 3, Year: 2024, Category: c, UserID: u.ID})
	april, _ := s.UpsertBudget(ctx, core.Budget{Amount: decimal.NewFromInt(2), Month: 4, Year: 2024, Category: c, UserID: u.ID})

	april.Month = 3
	if _, err := s.UpdateBudget(ctx, april); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}

	march.Month = 6
	moved, err := s.UpdateBudget(ctx, march)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := s.FindBudgetByKey(ctx, core.BudgetKey{UserID: u.ID, CategoryID: c.ID, Month: 3, Year: 2024}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("old key still present: %v", err)
	}
	got, err := s.FindBudgetByKey(ctx, moved.Key())
	if err != nil || got.ID != march.ID {
		t.Fatalf("new key lookup: %+v %v", got, err)
	}
}

func TestDeleteCategoryCascades(t *testing.T) {
	ctx := context.Background()
	s, u, c := seed(t)

	b, _ := s.UpsertBudget(ctx, core.Budget{Amount: decimal.NewFromInt(1), Month: 3, Year: 2024, Category: c, UserID: u.ID})
	cat := c
	tx, err := s.Expenses().CreateTransaction(ctx, core.Transaction{
		Amount: decimal.NewFromInt(5), Date: core.NewDate(2024, 3, 1), Category: &cat, UserID: u.ID,
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	if err := s.DeleteCategory(ctx, c.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if _, err := s.FindBudget(ctx, b.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("budget survived category delete: %v", err)
	}
	got, err := s.Expenses().FindTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatalf("expense lost: %v", err)
	}
	if got.Category != nil {
		t.Fatalf("expense still categorized: %+v", got.Category)
	}
}

func TestTransactionsAreSeparatedByKind(t *testing.T) {
	ctx := context.Background()
	s, u, _ := seed(t)

	_, err := s.Incomes().CreateTransaction(ctx, core.Transaction{Amount: decimal.NewFromInt(10), Date: core.NewDate(2024, 1, 1), UserID: u.ID})
	if err != nil {
		t.Fatalf("create income: %v", err)
	}
	incomes, _ := s.Incomes().ListTransactions(ctx, u.ID)
	expenses, _ := s.Expenses().ListTransactions(ctx, u.ID)
	if len(incomes) != 1 || len(expenses) != 0 {
		t.Fatalf("incomes=%d expenses=%d", len(incomes), len(expenses))
	}
	if incomes[0].Kind != core.KindIncome {
		t.Fatalf("kind = %q", incomes[0].Kind)
	}

	missing := core.Category{ID: 404}
	_, err = s.Expenses().CreateTransaction(ctx, core.Transaction{Amount: decimal.NewFromInt(1), Date: core.NewDate(2024, 1, 1), Category: &missing, UserID: u.ID})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("unknown category err = %v", err)
	}
}

func TestNewFromFilesSeedsUsers(t *testing.T) {
	dir := t.TempDir()
	s := NewFromFiles(dir)
	if _, err := s.FindUserByID(context.Background(), 1); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected empty store without seed file")
	}

	content := "# users\nbob@example.com\nbob@example.com\n\ncarol@example.com\n"
	if err := os.WriteFile(filepath.Join(dir, "seed_users.txt"), []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s = NewFromFiles(dir)
	for _, email := range []string{"bob@example.com", "carol@example.com"} {
		if _, err := s.FindUserByEmail(context.Background(), email); err != nil {
			t.Fatalf("seeded user %s missing: %v", email, err)
		}
	}
}
