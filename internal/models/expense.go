package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the storage and wire format for expense dates.
const DateLayout = "2006-01-02"

// SplitType names the policy used to turn an Expense total into Splits.
type SplitType string

const (
	SplitEqual      SplitType = "equal"
	SplitCustom     SplitType = "custom"
	SplitPercentage SplitType = "percentage"
	SplitItemized   SplitType = "itemized"
)

// Expense represents a single recorded cost paid by one group member.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group that owns the expense.
	GroupID string

	// PayerID is the user who paid the full amount.
	PayerID string

	// Amount is the total cost. Always > 0 and equal to the sum of Splits.
	Amount decimal.Decimal

	Description string
	Category    Category

	// Date is the civil date of the expense (midnight UTC).
	Date time.Time

	// SplitType records the policy used at creation time.
	// Edits redistribute with SplitEqual regardless of this value.
	SplitType SplitType

	// Receipt holds optional receipt metadata.
	Receipt *Receipt

	// Items are the itemized receipt lines, if any.
	Items []LineItem

	// Splits are the per-participant shares, in participant order.
	Splits []Split

	// RecurringID and RecurringPeriod are set on expenses materialized from a
	// RecurringExpense. Together they are unique.
	RecurringID     string
	RecurringPeriod string

	CreatedAt int64
	UpdatedAt int64
}

// Participants returns the participant IDs of the expense splits in order.
func (e *Expense) Participants() []string {
	ids := make([]string, len(e.Splits))
	for i, s := range e.Splits {
		ids[i] = s.UserID
	}
	return ids
}

// SplitFor returns the split owed by userID, if any.
func (e *Expense) SplitFor(userID string) (Split, bool) {
	for _, s := range e.Splits {
		if s.UserID == userID {
			return s, true
		}
	}
	return Split{}, false
}

// Receipt holds the breakdown printed on a receipt.
type Receipt struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Tip      decimal.Decimal
	Itemized bool
}

// LineItem is one line on an itemized receipt.
type LineItem struct {
	ID   string
	Name string

	// Price is the pre-tax price of the line.
	Price decimal.Decimal

	// Assignees share the line equally.
	Assignees []string
}

// Split is one participant's share of an Expense.
type Split struct {
	ExpenseID string
	UserID    string

	// AmountOwed is the participant's share. Always >= 0.
	AmountOwed decimal.Decimal

	// Paid is true only on the payer's own split.
	Paid bool
}
