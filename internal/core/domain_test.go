package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseCategoryType(t *testing.T) {
	cases := []struct {
		in   string
		want CategoryType
		err  error
	}{
		{"INCOME", CategoryIncome, nil},
		{"income", CategoryIncome, nil},
		{"Income", CategoryIncome, nil},
		{" expense ", CategoryExpense, nil},
		{"ExPeNsE", CategoryExpense, nil},
		{"savings", "", ErrInvalidCategoryType},
		{"", "", ErrInvalidCategoryType},
	}
	for _, tc := range cases {
		got, err := ParseCategoryType(tc.in)
		if !errors.Is(err, tc.err) {
			t.Fatalf("ParseCategoryType(%q) err = %v, want %v", tc.in, err, tc.err)
		}
		if got != tc.want {
			t.Fatalf("ParseCategoryType(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestInvalidCategoryTypeIsValidation(t *testing.T) {
	_, err := ParseCategoryType("savings")
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("validation error must not match ErrNotFound")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2024 || d.Month() != 3 || d.Day() != 15 {
		t.Fatalf("unexpected date %v", d)
	}
	if d.String() != "2024-03-15" {
		t.Fatalf("String() = %q", d.String())
	}

	for _, bad := range []string{"", "15/03/2024", "2024-13-01", "2024-02-30"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("ParseDate(%q) err = %v, want ErrInvalidDate", bad, err)
		}
	}
}

func TestDateValidate(t *testing.T) {
	if err := NewDate(2025, 1, 1).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Date{Time: time.Time{}}).Validate(); err == nil {
		t.Fatalf("expected error for zero date")
	}
}

func TestCategoryValidate(t *testing.T) {
	for _, name := range []string{"Food", strings.Repeat("é", 100), strings.Repeat("€", 100)} {
		good := Category{Name: name, Type: CategoryExpense}
		if err := good.Validate(); err != nil {
			t.Fatalf("Validate(%d runes) = %v, want ok", len([]rune(name)), err)
		}
	}

	bads := []struct {
		c   Category
		err error
	}{
		{Category{Name: "  ", Type: CategoryExpense}, ErrEmptyName},
		{Category{Name: strings.Repeat("x", 101), Type: CategoryIncome}, ErrNameTooLong},
		{Category{Name: strings.Repeat("é", 101), Type: CategoryIncome}, ErrNameTooLong},
		{Category{Name: "Food", Type: "SAVINGS"}, ErrInvalidCategoryType},
	}
	for i, tc := range bads {
		if err := tc.c.Validate(); !errors.Is(err, tc.err) {
			t.Fatalf("case %d: err = %v, want %v", i, err, tc.err)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{Amount: decimal.NewFromInt(10), Date: NewDate(2024, 3, 1)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	good.Description = strings.Repeat("€", 255)
	if err := good.Validate(); err != nil {
		t.Fatalf("255-rune description: %v", err)
	}

	bads := []struct {
		tx  Transaction
		err error
	}{
		{Transaction{Amount: decimal.Zero, Date: NewDate(2024, 3, 1)}, ErrInvalidAmount},
		{Transaction{Amount: decimal.NewFromInt(-5), Date: NewDate(2024, 3, 1)}, ErrInvalidAmount},
		{Transaction{Amount: decimal.NewFromInt(5)}, ErrInvalidDate},
		{Transaction{Amount: decimal.NewFromInt(5), Date: NewDate(2024, 3, 1), Description: strings.Repeat("d", 256)}, ErrDescriptionTooLong},
		{Transaction{Amount: decimal.NewFromInt(5), Date: NewDate(2024, 3, 1), Description: strings.Repeat("€", 256)}, ErrDescriptionTooLong},
		{Transaction{Amount: decimal.New(1, 12), Date: NewDate(2024, 3, 1)}, ErrAmountTooLarge},
	}
	for i, tc := range bads {
		if err := tc.tx.Validate(); !errors.Is(err, tc.err) {
			t.Fatalf("case %d: err = %v, want %v", i, err, tc.err)
		}
	}
}

func TestBudgetValidate(t *testing.T) {
	base := Budget{Amount: decimal.NewFromInt(100), Month: 3, Year: 2024, Category: Category{ID: 1}}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Budget)
		err    error
	}{
		{"zero amount", func(b *Budget) { b.Amount = decimal.Zero }, ErrInvalidAmount},
		{"month zero", func(b *Budget) { b.Month = 0 }, ErrInvalidMonth},
		{"month thirteen", func(b *Budget) { b.Month = 13 }, ErrInvalidMonth},
		{"year out of range", func(b *Budget) { b.Year = 12 }, ErrInvalidYear},
		{"no category", func(b *Budget) { b.Category = Category{} }, ErrMissingCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := base
			tt.mutate(&b)
			if err := b.Validate(); !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestUserOwns(t *testing.T) {
	alice := User{ID: 1, Email: "alice@example.com"}

	if !alice.Owns(Category{ID: 7, UserID: 1}) {
		t.Fatal("alice should own her category")
	}
	if alice.Owns(Budget{ID: 3, UserID: 2}) {
		t.Fatal("alice should not own bob's budget")
	}
	if (User{}).Owns(Transaction{UserID: 0}) {
		t.Fatal("an unresolved user owns nothing")
	}
}

func TestKindErrorMessages(t *testing.T) {
	if ErrNoBudgetForPeriod.Error() != "no budget for this period" {
		t.Fatalf("unexpected message %q", ErrNoBudgetForPeriod.Error())
	}
	if !errors.Is(ErrNoBudgetForPeriod, ErrNotFound) {
		t.Fatal("ErrNoBudgetForPeriod should be a not found error")
	}
	if !errors.Is(ErrNotOwner, ErrForbidden) {
		t.Fatal("ErrNotOwner should be a forbidden error")
	}
	if !errors.Is(ErrDuplicateBudget, ErrConflict) {
		t.Fatal("ErrDuplicateBudget should be a conflict error")
	}
}
