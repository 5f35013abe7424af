package http

import (
	"errors"
	"strings"

	"expensetracker/internal/core"
)

// sanitizeInput removes control characters except tab and newlines, then trims.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// expenseRow is one line of the history list.
type expenseRow struct {
	Description string
	Amount      string
	Category    string
	PhotoURL    string
}

func expenseRows(expenses []core.ExpenseEntry, categories []core.Category) []expenseRow {
	rows := make([]expenseRow, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, expenseRow{
			Description: e.Description,
			Amount:      core.FormatAmount(e.Amount),
			Category:    core.CategoryName(categories, e.CategoryID),
			PhotoURL:    e.PhotoURL,
		})
	}
	return rows
}

// validationMessage maps a pipeline validation failure to the text shown to
// the user.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrPhotoTooLarge):
		return "Photo is too large."
	case errors.Is(err, core.ErrInvalidPhoto):
		return "Please select an image file."
	default:
		return "Please fill all fields."
	}
}
