package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"budgetwise/internal/core"
	"budgetwise/internal/ports"
)

// Store keeps every record in process memory. A single mutex guards all
// tables so multi-table operations such as category deletion stay atomic.
type Store struct {
	mu sync.Mutex

	seq        int64
	users      map[int64]core.User
	categories map[int64]core.Category
	budgets    map[int64]core.Budget
	budgetKeys map[core.BudgetKey]int64

	incomes  *transactions
	expenses *transactions
}

var _ ports.Store = (*Store)(nil)

func New() *Store {
	s := &Store{
		users:      make(map[int64]core.User),
		categories: make(map[int64]core.Category),
		budgets:    make(map[int64]core.Budget),
		budgetKeys: make(map[core.BudgetKey]int64),
	}
	s.incomes = &transactions{store: s, kind: core.KindIncome, rows: make(map[int64]core.Transaction)}
	s.expenses = &transactions{store: s, kind: core.KindExpense, rows: make(map[int64]core.Transaction)}
	return s
}

// NewFromFiles creates a store and provisions the users listed, one email per
// line, in base/seed_users.txt.
func NewFromFiles(base string) *Store {
	s := New()
	for _, email := range readLines(filepath.Join(base, "seed_users.txt")) {
		_, _ = s.CreateUser(context.Background(), email)
	}
	return s
}

func (s *Store) Incomes() ports.TransactionStore  { return s.incomes }
func (s *Store) Expenses() ports.TransactionStore { return s.expenses }

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// Users

func (s *Store) FindUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return core.User{}, core.ErrUserNotFound
}

func (s *Store) FindUserByID(_ context.Context, id int64) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, core.ErrUserNotFound
	}
	return u, nil
}

func (s *Store) CreateUser(_ context.Context, email string) (core.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return core.User{}, core.ErrInvalidEmail
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return core.User{}, core.ErrDuplicateUser
		}
	}
	u := core.User{ID: s.nextID(), Email: email}
	s.users[u.ID] = u
	return u, nil
}

// Categories

func (s *Store) FindCategory(_ context.Context, id int64) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, core.ErrCategoryNotFound
	}
	return c, nil
}

func (s *Store) ListCategories(_ context.Context, userID int64) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0)
	for _, c := range s.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[c.UserID]; !ok {
		return core.Category{}, core.ErrUserNotFound
	}
	c.ID = s.nextID()
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return core.ErrCategoryNotFound
	}
	delete(s.categories, id)
	for bid, b := range s.budgets {
		if b.Category.ID == id {
			delete(s.budgets, bid)
			delete(s.budgetKeys, b.Key())
		}
	}
	s.incomes.detach(id)
	s.expenses.detach(id)
	return nil
}

// Budgets

func (s *Store) FindBudget(_ context.Context, id int64) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return core.Budget{}, core.ErrBudgetNotFound
	}
	return s.hydrateBudget(b), nil
}

func (s *Store) FindBudgetByKey(_ context.Context, key core.BudgetKey) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.budgetKeys[key]
	if !ok {
		return core.Budget{}, core.ErrNoBudgetForPeriod
	}
	return s.hydrateBudget(s.budgets[id]), nil
}

func (s *Store) ListBudgets(_ context.Context, userID int64) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Budget, 0)
	for _, b := range s.budgets {
		if b.UserID == userID {
			out = append(out, s.hydrateBudget(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpsertBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[b.Category.ID]; !ok {
		return core.Budget{}, core.ErrCategoryNotFound
	}
	if id, ok := s.budgetKeys[b.Key()]; ok {
		existing := s.budgets[id]
		existing.Amount = b.Amount
		s.budgets[id] = existing
		return s.hydrateBudget(existing), nil
	}
	b.ID = s.nextID()
	s.budgets[b.ID] = b
	s.budgetKeys[b.Key()] = b.ID
	return s.hydrateBudget(b), nil
}

func (s *Store) UpdateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.budgets[b.ID]
	if !ok {
		return core.Budget{}, core.ErrBudgetNotFound
	}
	if _, ok := s.categories[b.Category.ID]; !ok {
		return core.Budget{}, core.ErrCategoryNotFound
	}
	if id, taken := s.budgetKeys[b.Key()]; taken && id != b.ID {
		return core.Budget{}, core.ErrDuplicateBudget
	}
	delete(s.budgetKeys, old.Key())
	s.budgets[b.ID] = b
	s.budgetKeys[b.Key()] = b.ID
	return s.hydrateBudget(b), nil
}

func (s *Store) DeleteBudget(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return core.ErrBudgetNotFound
	}
	delete(s.budgets, id)
	delete(s.budgetKeys, b.Key())
	return nil
}

// hydrateBudget refreshes the embedded category from the categories table.
// Callers must hold s.mu.
func (s *Store) hydrateBudget(b core.Budget) core.Budget {
	if c, ok := s.categories[b.Category.ID]; ok {
		b.Category = c
	}
	return b
}

// transactions is one transaction table. It shares the parent store's lock.
type transactions struct {
	store *Store
	kind  core.TransactionKind
	rows  map[int64]core.Transaction
}

func (t *transactions) FindTransaction(_ context.Context, id int64) (core.Transaction, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	tx, ok := t.rows[id]
	if !ok {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	return t.hydrate(tx), nil
}

func (t *transactions) ListTransactions(_ context.Context, userID int64) ([]core.Transaction, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	out := make([]core.Transaction, 0)
	for _, tx := range t.rows {
		if tx.UserID == userID {
			out = append(out, t.hydrate(tx))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *transactions) CreateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if err := t.checkCategory(tx); err != nil {
		return core.Transaction{}, err
	}
	tx.ID = t.store.nextID()
	tx.Kind = t.kind
	t.rows[tx.ID] = tx
	return t.hydrate(tx), nil
}

func (t *transactions) UpdateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if _, ok := t.rows[tx.ID]; !ok {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	if err := t.checkCategory(tx); err != nil {
		return core.Transaction{}, err
	}
	tx.Kind = t.kind
	t.rows[tx.ID] = tx
	return t.hydrate(tx), nil
}

func (t *transactions) DeleteTransaction(_ context.Context, id int64) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return core.ErrTransactionNotFound
	}
	delete(t.rows, id)
	return nil
}

func (t *transactions) checkCategory(tx core.Transaction) error {
	if tx.Category == nil {
		return nil
	}
	if _, ok := t.store.categories[tx.Category.ID]; !ok {
		return core.ErrCategoryNotFound
	}
	return nil
}

func (t *transactions) hydrate(tx core.Transaction) core.Transaction {
	if tx.Category != nil {
		if c, ok := t.store.categories[tx.Category.ID]; ok {
			tx.Category = &c
		} else {
			tx.Category = nil
		}
	}
	return tx
}

func (t *transactions) detach(categoryID int64) {
	for id, tx := range t.rows {
		if tx.Category != nil && tx.Category.ID == categoryID {
			tx.Category = nil
			t.rows[id] = tx
		}
	}
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	seen := map[string]struct{}{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
