// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	// ErrNotFound is returned (wrapped) when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned (wrapped) when a write collides with existing
	// state, such as a duplicate key or a settlement that is no longer pending.
	ErrConflict = errors.New("conflict")
)

// ExpenseFilter narrows ListExpenses. Zero-valued fields do not filter.
type ExpenseFilter struct {
	GroupID string

	// UserID keeps expenses the user paid for or holds a split in.
	UserID string

	Category models.Category

	// Since keeps expenses dated on or after this day.
	Since time.Time

	// Search matches a case-insensitive substring of the description.
	Search string

	Limit int
}

// SettlementFilter narrows ListSettlements. Zero-valued fields do not filter.
type SettlementFilter struct {
	GroupID  string
	ToUserID string
	Status   models.SettlementStatus
}

// RecurringFilter narrows ListRecurring.
type RecurringFilter struct {
	GroupID    string
	ActiveOnly bool
}

// BudgetFilter selects one owner's budgets. An empty GroupID selects the
// owner's budgets that are not scoped to a group.
type BudgetFilter struct {
	OwnerID string
	GroupID string
}

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the ledger or service layers.
type Store interface {
	// WithTx runs fn inside a single transaction. Every write made through
	// the Store passed to fn commits together, or none does when fn returns
	// an error. Calling WithTx on a transactional Store reuses its transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail returns ErrNotFound if no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// GetUsersByIDs returns the users that exist, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// CreateGroup persists a group and its initial members.
	// The group.ID field will be populated by the store.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)
	// AddGroupMembers adds users to a group, ignoring existing members.
	AddGroupMembers(ctx context.Context, groupID string, userIDs []string) error

	// CreateExpense persists the expense row and its line items. Splits are
	// written separately with InsertSplits inside the same transaction.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	InsertSplits(ctx context.Context, expenseID string, splits []models.Split) error
	DeleteSplits(ctx context.Context, expenseID string) error
	// GetExpense retrieves an expense with its line items and splits.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	// UpdateExpense writes amount, description, category, split type and
	// UpdatedAt.
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	// DeleteExpense removes an expense; its splits and items cascade.
	DeleteExpense(ctx context.Context, expenseID string) error
	// ListExpenses returns matching expenses with splits (not line items),
	// newest first.
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]*models.Expense, error)
	// HasRecurringExpense reports whether a template already produced an
	// expense for the period.
	HasRecurringExpense(ctx context.Context, recurringID, period string) (bool, error)

	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)
	// ConfirmSettlement moves a pending settlement to confirmed. It returns
	// ErrConflict if the settlement is no longer pending.
	ConfirmSettlement(ctx context.Context, settlementID string, confirmedAt int64) error
	ListSettlements(ctx context.Context, filter SettlementFilter) ([]*models.Settlement, error)

	CreateRecurring(ctx context.Context, recurring *models.RecurringExpense) error
	GetRecurring(ctx context.Context, recurringID string) (*models.RecurringExpense, error)
	ListRecurring(ctx context.Context, filter RecurringFilter) ([]*models.RecurringExpense, error)
	SetRecurringActive(ctx context.Context, recurringID string, active bool) error
	DeleteRecurring(ctx context.Context, recurringID string) error

	// UpsertBudget inserts a budget or updates the amount of the existing
	// budget with the same owner, group, category and period. budget.ID is
	// set to the stored row's ID.
	UpsertBudget(ctx context.Context, budget *models.Budget) error
	GetBudget(ctx context.Context, budgetID string) (*models.Budget, error)
	ListBudgets(ctx context.Context, filter BudgetFilter) ([]*models.Budget, error)
	DeleteBudget(ctx context.Context, budgetID string) error

	// Close releases any resources held by the store.
	Close() error
}
