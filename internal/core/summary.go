package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// CategoryName resolves a category id against the loaded set.
// Missing ids fall back to UnknownCategoryName.
func CategoryName(categories []Category, id string) string {
	for _, c := range categories {
		if c.ID == id {
			return c.Name
		}
	}
	return UnknownCategoryName
}

// TotalsByCategory sums expenses per category name, largest first.
func TotalsByCategory(expenses []ExpenseEntry, categories []Category) []CategoryAmount {
	sums := make(map[string]decimal.Decimal)
	var order []string
	for _, e := range expenses {
		name := CategoryName(categories, e.CategoryID)
		if _, ok := sums[name]; !ok {
			order = append(order, name)
		}
		sums[name] = sums[name].Add(e.Amount)
	}
	out := make([]CategoryAmount, 0, len(order))
	for _, name := range order {
		out = append(out, CategoryAmount{Name: name, Amount: sums[name]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}
