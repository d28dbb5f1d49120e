// Package summary derives display-ready financial metrics from in-memory
// record lists. Every function is a pure function of its input: no storage
// access, no mutation, and edge cases (empty input, zero denominators)
// degrade to zero values instead of failing.
package summary

import (
	"math"

	"github.com/dukerupert/hearth/internal/model"
)

// CategoryTotal is one slice of the approved-expense breakdown. Percentage is
// the category's share of the approved total, rounded to the nearest integer.
type CategoryTotal struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage int     `json:"percentage"`
}

// Summary is the composite snapshot rendered by the dashboard and summary
// views. It is rebuilt from a full record fetch on every change notification.
type Summary struct {
	TotalExpenses   float64         `json:"total_expenses"`
	TotalDebts      float64         `json:"total_debts"`
	AverageExpense  float64         `json:"average_expense"`
	AverageDebt     float64         `json:"average_debt"`
	PendingExpenses int             `json:"pending_expenses"`
	PendingDebts    int             `json:"pending_debts"`
	PendingTotal    int             `json:"pending_total"`
	Categories      []CategoryTotal `json:"categories"`
}

// TotalApproved sums the amounts of approved records. Zero for an empty list
// or one with no approved entries.
func TotalApproved[T model.Approvable](records []T) float64 {
	var total float64
	for _, r := range records {
		if r.ApprovalStatus() == model.StatusApproved {
			total += r.Value()
		}
	}
	return total
}

// PendingCount counts records still awaiting approval.
func PendingCount[T model.Approvable](records []T) int {
	var count int
	for _, r := range records {
		if r.ApprovalStatus() == model.StatusPending {
			count++
		}
	}
	return count
}

// AverageApproved returns the mean amount of approved records, or 0 when
// there are none.
func AverageApproved[T model.Approvable](records []T) float64 {
	var total float64
	var count int
	for _, r := range records {
		if r.ApprovalStatus() == model.StatusApproved {
			total += r.Value()
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// CategoryBreakdown groups approved expenses by category, preserving the
// first-encountered order of categories in the input. When the approved total
// is zero every percentage is 0.
func CategoryBreakdown(expenses []model.Expense) []CategoryTotal {
	total := TotalApproved(expenses)

	var order []string
	amounts := make(map[string]float64)
	for _, e := range expenses {
		if e.Status != model.StatusApproved {
			continue
		}
		if _, seen := amounts[e.Category]; !seen {
			order = append(order, e.Category)
		}
		amounts[e.Category] += e.Amount
	}

	breakdown := make([]CategoryTotal, 0, len(order))
	for _, cat := range order {
		amount := amounts[cat]
		var pct int
		if total > 0 {
			pct = int(math.Round(amount / total * 100))
		}
		breakdown = append(breakdown, CategoryTotal{
			Category:   cat,
			Amount:     amount,
			Percentage: pct,
		})
	}
	return breakdown
}

// Build assembles the full snapshot from the family's expense and debt lists.
func Build(expenses []model.Expense, debts []model.Debt) Summary {
	pendingExpenses := PendingCount(expenses)
	pendingDebts := PendingCount(debts)
	return Summary{
		TotalExpenses:   TotalApproved(expenses),
		TotalDebts:      TotalApproved(debts),
		AverageExpense:  AverageApproved(expenses),
		AverageDebt:     AverageApproved(debts),
		PendingExpenses: pendingExpenses,
		PendingDebts:    pendingDebts,
		PendingTotal:    pendingExpenses + pendingDebts,
		Categories:      CategoryBreakdown(expenses),
	}
}
