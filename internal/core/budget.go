package core

import "github.com/shopspring/decimal"

const (
	UnderBudget BudgetState = "UNDER_BUDGET"
	OverBudget  BudgetState = "OVER_BUDGET"
)

type BudgetState string

// BudgetStatus compares what was spent in one category and month against
// the amount budgeted for it.
type BudgetStatus struct {
	CategoryName    string
	BudgetAmount    decimal.Decimal
	ActualSpent     decimal.Decimal
	RemainingAmount decimal.Decimal
	Status          BudgetState
}

// ComputeBudgetStatus sums the expenses that share the budget's category,
// month and year. Uncategorized expenses never count. A remaining amount of
// exactly zero is still under budget.
func ComputeBudgetStatus(b Budget, expenses []Transaction) BudgetStatus {
	spent := Sum(MatchingExpenses(b, expenses))
	remaining := b.Amount.Sub(spent)

	state := UnderBudget
	if remaining.IsNegative() {
		state = OverBudget
	}

	return BudgetStatus{
		CategoryName:    b.Category.Name,
		BudgetAmount:    b.Amount,
		ActualSpent:     spent,
		RemainingAmount: remaining,
		Status:          state,
	}
}

// MatchingExpenses filters expenses down to the budget's category and period.
func MatchingExpenses(b Budget, expenses []Transaction) []Transaction {
	var out []Transaction
	for _, e := range expenses {
		if e.Category == nil || e.Category.ID != b.Category.ID {
			continue
		}
		if e.Date.Month() != b.Month || e.Date.Year() != b.Year {
			continue
		}
		out = append(out, e)
	}
	return out
}
