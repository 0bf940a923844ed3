package api

import "github.com/shopspring/decimal"

// Auth

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

// Groups

type CreateGroupRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	MemberEmails []string `json:"member_emails,omitempty"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type AddMemberRequest struct {
	GroupID string `json:"group_id"`
	Email   string `json:"email"`
}

type AddMemberResponse struct {
	Group *Group `json:"group"`
}

// GetBalanceRequest without a GroupID covers every group.
type GetBalanceRequest struct {
	GroupID string `json:"group_id,omitempty"`
}

type GetBalanceResponse struct {
	Balance *Balance `json:"balance"`
}

type GetGroupBalancesRequest struct {
	GroupID            string `json:"group_id"`
	IncludeSettlements bool   `json:"include_settlements,omitempty"`
}

type GetGroupBalancesResponse struct {
	Balances           []*Balance `json:"balances"`
	Debts              []*Debt    `json:"debts"`
	SettlementsApplied bool       `json:"settlements_applied"`
}

// Expenses

type PreviewSplitRequest struct {
	GroupID      string          `json:"group_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Participants []string        `json:"participants,omitempty"`
	Policy       *SplitPolicy    `json:"policy,omitempty"`
}

type PreviewSplitResponse struct {
	Shares    []*Share           `json:"shares"`
	Breakdown []*PersonBreakdown `json:"breakdown,omitempty"`
}

type CreateExpenseRequest struct {
	GroupID      string          `json:"group_id"`
	PayerID      string          `json:"payer_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Category     string          `json:"category,omitempty"`
	Date         string          `json:"date,omitempty"`
	Participants []string        `json:"participants,omitempty"`
	Policy       *SplitPolicy    `json:"policy,omitempty"`
	Receipt      *Receipt        `json:"receipt,omitempty"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

// UpdateExpenseRequest changes only the fields that are set.
type UpdateExpenseRequest struct {
	ExpenseID   string           `json:"expense_id"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty"`
}

type UpdateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type DeleteExpenseResponse struct{}

type ListGroupExpensesRequest struct {
	GroupID string `json:"group_id"`
	Limit   int    `json:"limit,omitempty"`
}

type ListGroupExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type SearchExpensesRequest struct {
	GroupID  string `json:"group_id,omitempty"`
	Query    string `json:"query,omitempty"`
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

type SearchExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

// Settlements

type CreateSettlementRequest struct {
	GroupID  string          `json:"group_id"`
	ToUserID string          `json:"to_user_id"`
	Amount   decimal.Decimal `json:"amount"`
	Note     string          `json:"note,omitempty"`
}

type CreateSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type ConfirmSettlementRequest struct {
	SettlementID string `json:"settlement_id"`
}

type ConfirmSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type ListPendingSettlementsRequest struct{}

type ListPendingSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

type ListGroupSettlementsRequest struct {
	GroupID string `json:"group_id"`
}

type ListGroupSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

// Recurring

type CreateRecurringRequest struct {
	GroupID     string          `json:"group_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	Frequency   string          `json:"frequency,omitempty"`
	DayOfMonth  int             `json:"day_of_month"`
	StartDate   string          `json:"start_date,omitempty"`
	EndDate     string          `json:"end_date,omitempty"`
}

type CreateRecurringResponse struct {
	Recurring *Recurring `json:"recurring"`
}

type ListRecurringRequest struct {
	GroupID string `json:"group_id"`
}

type ListRecurringResponse struct {
	Recurring []*Recurring `json:"recurring"`
}

type ToggleRecurringRequest struct {
	RecurringID string `json:"recurring_id"`
}

type ToggleRecurringResponse struct {
	Recurring *Recurring `json:"recurring"`
}

type DeleteRecurringRequest struct {
	RecurringID string `json:"recurring_id"`
}

type DeleteRecurringResponse struct{}

// Budgets

// SetBudgetRequest without a GroupID budgets across every group.
type SetBudgetRequest struct {
	GroupID  string          `json:"group_id,omitempty"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Period   string          `json:"period,omitempty"`
}

type SetBudgetResponse struct {
	Budget *Budget `json:"budget"`
}

type ListBudgetsRequest struct {
	GroupID string `json:"group_id,omitempty"`
}

type ListBudgetsResponse struct {
	Budgets []*Budget `json:"budgets"`
}

type DeleteBudgetRequest struct {
	BudgetID string `json:"budget_id"`
}

type DeleteBudgetResponse struct{}
