package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input into a strictly positive decimal amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted. A comma
// followed by exactly three digits reads as a thousands separator and is
// rejected rather than guessed at. Zero is not an expense and, like negative
// and non-numeric values, returns ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("45.50") -> 45.50, nil
//	ParseAmount("12,3")  -> 12.3, nil
//	ParseAmount("1,000") -> 0, ErrInvalidAmount
//	ParseAmount("0")     -> 0, ErrInvalidAmount
//	ParseAmount("abc")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(s, ",") > 1 || (strings.Contains(s, ",") && strings.Contains(s, ".")) {
		return decimal.Zero, ErrInvalidAmount
	}
	if i := strings.IndexByte(s, ','); i >= 0 && len(s)-i-1 == 3 {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	// Exponent notation is valid for decimal but not something a user types.
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount the way the history list shows it.
func FormatAmount(d decimal.Decimal) string {
	return "R" + d.StringFixed(2)
}
