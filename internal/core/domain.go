package core

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	CategoryIncome  CategoryType = "INCOME"
	CategoryExpense CategoryType = "EXPENSE"
)

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 255
)

type (
	// Identity is the caller email resolved from the bearer token.
	Identity string

	CategoryType string

	TransactionKind string

	Date struct {
		time.Time
	}

	User struct {
		ID    int64
		Email string
	}

	Category struct {
		ID     int64
		Name   string
		Type   CategoryType
		UserID int64
	}

	// Transaction is either an income or an expense. Category is nil for
	// uncategorized records.
	Transaction struct {
		ID          int64
		Kind        TransactionKind
		Amount      decimal.Decimal
		Description string
		Date        Date
		Category    *Category
		UserID      int64
	}

	Budget struct {
		ID       int64
		Amount   decimal.Decimal
		Month    int
		Year     int
		Category Category
		UserID   int64
	}

	// BudgetKey is the natural key of a budget.
	BudgetKey struct {
		UserID     int64
		CategoryID int64
		Month      int
		Year       int
	}
)

// ParseCategoryType accepts INCOME or EXPENSE in any letter case.
func ParseCategoryType(s string) (CategoryType, error) {
	switch CategoryType(strings.ToUpper(strings.TrimSpace(s))) {
	case CategoryIncome:
		return CategoryIncome, nil
	case CategoryExpense:
		return CategoryExpense, nil
	default:
		return "", ErrInvalidCategoryType
	}
}

func (k TransactionKind) String() string { return string(k) }

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

const DateLayout = "2006-01-02"

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func ValidateMonth(month int) error {
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

func ValidateYear(year int) error {
	if year < 1900 || year > 9999 {
		return ErrInvalidYear
	}
	return nil
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return ErrNameTooLong
	}
	if _, err := ParseCategoryType(string(c.Type)); err != nil {
		return err
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if utf8.RuneCountInString(t.Description) > maxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

// CategoryID returns the id of the attached category, or zero.
func (t Transaction) CategoryID() int64 {
	if t.Category == nil {
		return 0
	}
	return t.Category.ID
}

func (b Budget) Validate() error {
	if err := ValidateAmount(b.Amount); err != nil {
		return err
	}
	if err := ValidateMonth(b.Month); err != nil {
		return err
	}
	if err := ValidateYear(b.Year); err != nil {
		return err
	}
	if b.Category.ID == 0 {
		return ErrMissingCategory
	}
	return nil
}

func (b Budget) Key() BudgetKey {
	return BudgetKey{UserID: b.UserID, CategoryID: b.Category.ID, Month: b.Month, Year: b.Year}
}
