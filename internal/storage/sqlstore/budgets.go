package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const budgetColumns = "id, owner_id, group_id, category, amount, period, created_at, updated_at"

// UpsertBudget inserts a budget, or updates the amount when one already
// exists for the same owner, group, category and period.
func (s *Store) UpsertBudget(ctx context.Context, budget *models.Budget) error {
	now := time.Now().Unix()
	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}
	if budget.Period == "" {
		budget.Period = models.BudgetMonthly
	}
	budget.UpdatedAt = now

	err := s.queryRow(ctx,
		`INSERT INTO budgets (`+budgetColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (owner_id, group_id, category, period)
		 DO UPDATE SET amount = excluded.amount, updated_at = excluded.updated_at
		 RETURNING id, created_at`,
		budget.ID, budget.OwnerID, budget.GroupID, string(budget.Category), budget.Amount,
		string(budget.Period), now, now,
	).Scan(&budget.ID, &budget.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert budget: %w", err)
	}
	return nil
}

// GetBudget retrieves a budget by ID.
func (s *Store) GetBudget(ctx context.Context, budgetID string) (*models.Budget, error) {
	row := s.queryRow(ctx, "SELECT "+budgetColumns+" FROM budgets WHERE id = ?", budgetID)
	budget, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("budget %s: %w", budgetID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return budget, nil
}

// ListBudgets returns an owner's budgets for one scope, ordered by category.
func (s *Store) ListBudgets(ctx context.Context, filter storage.BudgetFilter) ([]*models.Budget, error) {
	rows, err := s.query(ctx,
		"SELECT "+budgetColumns+" FROM budgets WHERE owner_id = ? AND group_id = ? ORDER BY category, period",
		filter.OwnerID, filter.GroupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*models.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, budget)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate budgets: %w", err)
	}
	return budgets, nil
}

// DeleteBudget removes a budget by ID.
func (s *Store) DeleteBudget(ctx context.Context, budgetID string) error {
	res, err := s.exec(ctx, "DELETE FROM budgets WHERE id = ?", budgetID)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return mustAffect(res, "budget", budgetID)
}

func scanBudget(row scanner) (*models.Budget, error) {
	var (
		b                models.Budget
		category, period string
	)
	err := row.Scan(&b.ID, &b.OwnerID, &b.GroupID, &category, &b.Amount, &period, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Category = models.Category(category)
	b.Period = models.BudgetPeriod(period)
	return &b, nil
}
