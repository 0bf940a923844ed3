package models

import "github.com/shopspring/decimal"

// BudgetPeriod is the window a Budget is evaluated over.
type BudgetPeriod string

// BudgetMonthly evaluates spend since the first day of the current month.
const BudgetMonthly BudgetPeriod = "monthly"

// Budget is a spending ceiling for one user and category.
// Spent, remaining and percentage are computed on read, never stored.
type Budget struct {
	ID      string
	OwnerID string

	// GroupID scopes the budget to one group. Empty means all groups.
	GroupID string

	Category Category
	Amount   decimal.Decimal
	Period   BudgetPeriod

	CreatedAt int64
	UpdatedAt int64
}
