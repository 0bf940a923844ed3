package calculator

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// BudgetStatus is a budget's standing for the current period.
type BudgetStatus struct {
	Spent        decimal.Decimal
	Remaining    decimal.Decimal
	Percentage   int64
	IsOverBudget bool
}

// EvaluateBudget compares spent against the budget amount. Percentage is
// round(100 * spent / amount), or 0 when amount is not positive.
func EvaluateBudget(amount, spent decimal.Decimal) BudgetStatus {
	status := BudgetStatus{
		Spent:        spent,
		Remaining:    amount.Sub(spent),
		IsOverBudget: spent.GreaterThan(amount),
	}
	if amount.IsPositive() {
		status.Percentage = spent.Mul(hundred).Div(amount).Round(0).IntPart()
	}
	return status
}

// MonthStart returns midnight on the first day of now's month, in now's
// location. Monthly budgets count spend from this instant.
func MonthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// SumOwed totals the splits owed by userID across expenses.
func SumOwed(userID string, expenses []*models.Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		if s, ok := e.SplitFor(userID); ok {
			sum = sum.Add(s.AmountOwed)
		}
	}
	return sum
}
