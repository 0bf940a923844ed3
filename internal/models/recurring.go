package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is how often a RecurringExpense materializes.
type Frequency string

// FrequencyMonthly is the only supported frequency.
const FrequencyMonthly Frequency = "monthly"

// RecurringExpense is a template that spawns one Expense per period.
type RecurringExpense struct {
	ID          string
	GroupID     string
	PayerID     string
	Amount      decimal.Decimal
	Description string
	Category    Category
	Frequency   Frequency

	// DayOfMonth is 1..31. Days past the end of a month run on its last day.
	DayOfMonth int

	// StartDate and EndDate bound the active window (inclusive). Zero means open.
	StartDate time.Time
	EndDate   time.Time

	Active    bool
	CreatedAt int64
}

// InWindow reports whether day falls within the template's start/end window.
func (r *RecurringExpense) InWindow(day time.Time) bool {
	if !r.StartDate.IsZero() && day.Before(r.StartDate) {
		return false
	}
	if !r.EndDate.IsZero() && day.After(r.EndDate) {
		return false
	}
	return true
}
