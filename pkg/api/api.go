// Package api defines the messages exchanged with the splitledger RPC
// services. Messages are plain structs encoded as JSON; amounts are decimal
// strings and dates use the "2006-01-02" layout.
package api

import "github.com/shopspring/decimal"

// User is the public view of an account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

// Member is a group member with display details.
type Member struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

type Group struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	CreatedBy   string   `json:"created_by"`
	Members     []Member `json:"members"`
	CreatedAt   int64    `json:"created_at"`
}

type Split struct {
	UserID     string          `json:"user_id"`
	AmountOwed decimal.Decimal `json:"amount_owed"`
	Paid       bool            `json:"paid"`
}

type LineItem struct {
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	AssignedTo []string        `json:"assigned_to"`
}

type Receipt struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Tip      decimal.Decimal `json:"tip"`
	Itemized bool            `json:"itemized"`
}

type Expense struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"group_id"`
	PayerID     string          `json:"payer_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
	SplitType   string          `json:"split_type"`
	Receipt     *Receipt        `json:"receipt,omitempty"`
	Items       []LineItem      `json:"items,omitempty"`
	Splits      []Split         `json:"splits"`
	RecurringID string          `json:"recurring_id,omitempty"`
	CreatedAt   int64           `json:"created_at"`
	UpdatedAt   int64           `json:"updated_at"`
}

// SplitPolicy selects how an amount is divided. Type is one of equal,
// custom, percentage or itemized; only the matching fields are read.
type SplitPolicy struct {
	Type        string                     `json:"type,omitempty"`
	Amounts     map[string]decimal.Decimal `json:"amounts,omitempty"`
	Percentages map[string]decimal.Decimal `json:"percentages,omitempty"`
	Items       []LineItem                 `json:"items,omitempty"`
	Tax         decimal.Decimal            `json:"tax"`
	Tip         decimal.Decimal            `json:"tip"`
}

type Share struct {
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

// PersonBreakdown is one participant's itemized subtotal plus their part of
// tax and tip.
type PersonBreakdown struct {
	UserID   string          `json:"user_id"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Extra    decimal.Decimal `json:"extra"`
	Total    decimal.Decimal `json:"total"`
}

type Balance struct {
	UserID    string          `json:"user_id"`
	TotalPaid decimal.Decimal `json:"total_paid"`
	TotalOwed decimal.Decimal `json:"total_owed"`
	// Net is positive when the member is owed money.
	Net decimal.Decimal `json:"net"`
}

type Debt struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type Settlement struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"group_id"`
	FromUserID  string          `json:"from_user_id"`
	ToUserID    string          `json:"to_user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	Note        string          `json:"note,omitempty"`
	CreatedAt   int64           `json:"created_at"`
	ConfirmedAt int64           `json:"confirmed_at,omitempty"`
}

type Recurring struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"group_id"`
	PayerID     string          `json:"payer_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Frequency   string          `json:"frequency"`
	DayOfMonth  int             `json:"day_of_month"`
	StartDate   string          `json:"start_date,omitempty"`
	EndDate     string          `json:"end_date,omitempty"`
	Active      bool            `json:"active"`
	CreatedAt   int64           `json:"created_at"`
}

// Budget is a spending ceiling evaluated against the current month.
type Budget struct {
	ID           string          `json:"id"`
	GroupID      string          `json:"group_id,omitempty"`
	Category     string          `json:"category"`
	Amount       decimal.Decimal `json:"amount"`
	Period       string          `json:"period"`
	Spent        decimal.Decimal `json:"spent"`
	Remaining    decimal.Decimal `json:"remaining"`
	Percentage   int64           `json:"percentage"`
	IsOverBudget bool            `json:"is_over_budget"`
}
