package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount bounds. MaxAmount is exclusive. Exponent and digit limits are
// checked before rounding.
const (
	minAmountExponent = -32
	maxAmountExponent = 12
	maxAmountDigits   = 40
)

var MaxAmount = decimal.New(1, 12)

// ParseAmount converts a decimal string to a positive amount rounded to cents.
//
// Both dot (12.34) and comma (12,34) separators are accepted. Rounding is
// half-up on the third decimal place:
//
//	ParseAmount("12.345") -> 12.35
//	ParseAmount("12,3")   -> 12.30
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.Exponent() > maxAmountExponent {
		return decimal.Zero, ErrAmountTooLarge
	}
	if d.Exponent() < minAmountExponent || d.NumDigits() > maxAmountDigits {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(2)
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount rejects zero, negative and out-of-range amounts.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrInvalidAmount
	}
	if d.Cmp(MaxAmount) >= 0 {
		return ErrAmountTooLarge
	}
	return nil
}

// Sum adds up the amounts of the given transactions.
func Sum(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Amount)
	}
	return total
}
