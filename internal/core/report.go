package core

import "github.com/shopspring/decimal"

// Report holds all-time totals for one user.
type Report struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	NetBalance   decimal.Decimal
}

func BuildReport(incomes, expenses []Transaction) Report {
	in := Sum(incomes)
	out := Sum(expenses)
	return Report{
		TotalIncome:  in,
		TotalExpense: out,
		NetBalance:   in.Sub(out),
	}
}
