package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const expenseColumns = `e.id, e.group_id, e.paid_by, e.amount, e.description, e.category,
	e.expense_date, e.split_type, e.receipt_subtotal, e.receipt_tax, e.receipt_tip,
	e.receipt_itemized, e.recurring_id, e.recurring_period, e.created_at, e.updated_at`

// CreateExpense persists the expense row and its line items.
// A second expense for the same recurring template and period returns
// storage.ErrConflict.
func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.UpdatedAt == 0 {
		expense.UpdatedAt = expense.CreatedAt
	}

	var subtotal, tax, tip decimal.NullDecimal
	itemized := false
	if r := expense.Receipt; r != nil {
		subtotal = decimal.NewNullDecimal(r.Subtotal)
		tax = decimal.NewNullDecimal(r.Tax)
		tip = decimal.NewNullDecimal(r.Tip)
		itemized = r.Itemized
	}

	return s.atomic(ctx, func(ts *Store) error {
		_, err := ts.exec(ctx,
			`INSERT INTO expenses (id, group_id, paid_by, amount, description, category,
				expense_date, split_type, receipt_subtotal, receipt_tax, receipt_tip,
				receipt_itemized, recurring_id, recurring_period, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			expense.ID, expense.GroupID, expense.PayerID, expense.Amount, expense.Description,
			string(expense.Category), expense.Date.Format(models.DateLayout), string(expense.SplitType),
			subtotal, tax, tip, itemized,
			nullString(expense.RecurringID), nullString(expense.RecurringPeriod),
			expense.CreatedAt, expense.UpdatedAt,
		)
		if ts.dialect.uniqueViolation(err) {
			return fmt.Errorf("expense for %s/%s: %w", expense.RecurringID, expense.RecurringPeriod, storage.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}

		for i := range expense.Items {
			item := &expense.Items[i]
			if item.ID == "" {
				item.ID = uuid.New().String()
			}
			_, err = ts.exec(ctx,
				"INSERT INTO expense_items (id, expense_id, position, name, price) VALUES (?, ?, ?, ?, ?)",
				item.ID, expense.ID, i, item.Name, item.Price,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item: %w", err)
			}

			for j, userID := range item.Assignees {
				_, err = ts.exec(ctx,
					"INSERT INTO expense_item_assignees (item_id, user_id, position) VALUES (?, ?, ?)",
					item.ID, userID, j,
				)
				if err != nil {
					return fmt.Errorf("failed to insert item assignment: %w", err)
				}
			}
		}
		return nil
	})
}

// InsertSplits writes splits in order. The caller is expected to run this in
// the same transaction as CreateExpense or DeleteSplits.
func (s *Store) InsertSplits(ctx context.Context, expenseID string, splits []models.Split) error {
	return s.atomic(ctx, func(ts *Store) error {
		for i, split := range splits {
			_, err := ts.exec(ctx,
				"INSERT INTO expense_splits (expense_id, user_id, position, amount_owed, paid) VALUES (?, ?, ?, ?, ?)",
				expenseID, split.UserID, i, split.AmountOwed, split.Paid,
			)
			if err != nil {
				return fmt.Errorf("failed to insert split: %w", err)
			}
		}
		return nil
	})
}

// DeleteSplits removes every split of an expense.
func (s *Store) DeleteSplits(ctx context.Context, expenseID string) error {
	if _, err := s.exec(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", expenseID); err != nil {
		return fmt.Errorf("failed to delete splits: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including line items and splits.
func (s *Store) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.queryRow(ctx, "SELECT "+expenseColumns+" FROM expenses e WHERE e.id = ?", expenseID)
	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := s.loadSplits(ctx, []*models.Expense{expense}); err != nil {
		return nil, err
	}
	items, err := s.items(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	expense.Items = items
	return expense, nil
}

// UpdateExpense writes the editable fields of an expense.
func (s *Store) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.UpdatedAt == 0 {
		expense.UpdatedAt = time.Now().Unix()
	}
	res, err := s.exec(ctx,
		"UPDATE expenses SET amount = ?, description = ?, category = ?, split_type = ?, updated_at = ? WHERE id = ?",
		expense.Amount, expense.Description, string(expense.Category), string(expense.SplitType), expense.UpdatedAt, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return mustAffect(res, "expense", expense.ID)
}

// DeleteExpense removes an expense by ID.
func (s *Store) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.exec(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return mustAffect(res, "expense", expenseID)
}

// ListExpenses returns expenses matching filter, newest first.
func (s *Store) ListExpenses(ctx context.Context, filter storage.ExpenseFilter) ([]*models.Expense, error) {
	var (
		where []string
		args  []any
	)
	if filter.GroupID != "" {
		where = append(where, "e.group_id = ?")
		args = append(args, filter.GroupID)
	}
	if filter.UserID != "" {
		where = append(where, `(e.paid_by = ? OR EXISTS (
			SELECT 1 FROM expense_splits s WHERE s.expense_id = e.id AND s.user_id = ?))`)
		args = append(args, filter.UserID, filter.UserID)
	}
	if filter.Category != "" {
		where = append(where, "e.category = ?")
		args = append(args, string(filter.Category))
	}
	if !filter.Since.IsZero() {
		where = append(where, "e.expense_date >= ?")
		args = append(args, filter.Since.Format(models.DateLayout))
	}
	if filter.Search != "" {
		where = append(where, "LOWER(e.description) LIKE ?")
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	query := "SELECT " + expenseColumns + " FROM expenses e"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY e.expense_date DESC, e.created_at DESC, e.id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	if err := s.loadSplits(ctx, expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// HasRecurringExpense reports whether a template produced an expense for period.
func (s *Store) HasRecurringExpense(ctx context.Context, recurringID, period string) (bool, error) {
	var exists int
	err := s.queryRow(ctx,
		"SELECT 1 FROM expenses WHERE recurring_id = ? AND recurring_period = ?",
		recurringID, period,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check recurring expense: %w", err)
	}
	return true, nil
}

// loadSplits fills Splits on each expense, one query per batch of IDs.
func (s *Store) loadSplits(ctx context.Context, expenses []*models.Expense) error {
	byID := make(map[string]*models.Expense, len(expenses))
	ids := make([]string, len(expenses))
	for i, e := range expenses {
		byID[e.ID] = e
		ids[i] = e.ID
	}
	for _, batch := range batches(ids) {
		if err := s.loadSplitBatch(ctx, byID, batch); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadSplitBatch(ctx context.Context, byID map[string]*models.Expense, ids []string) error {
	rows, err := s.query(ctx,
		`SELECT expense_id, user_id, amount_owed, paid FROM expense_splits
		 WHERE expense_id IN (`+placeholders(len(ids))+`)
		 ORDER BY expense_id, position`,
		stringArgs(ids)...,
	)
	if err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var split models.Split
		if err := rows.Scan(&split.ExpenseID, &split.UserID, &split.AmountOwed, &split.Paid); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		e := byID[split.ExpenseID]
		e.Splits = append(e.Splits, split)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate splits: %w", err)
	}
	return nil
}

func (s *Store) items(ctx context.Context, expenseID string) ([]models.LineItem, error) {
	rows, err := s.query(ctx,
		`SELECT i.id, i.name, i.price, a.user_id
		 FROM expense_items i
		 LEFT JOIN expense_item_assignees a ON a.item_id = i.id
		 WHERE i.expense_id = ?
		 ORDER BY i.position, a.position`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var items []models.LineItem
	for rows.Next() {
		var (
			item     models.LineItem
			assignee sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &assignee); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		if n := len(items); n == 0 || items[n-1].ID != item.ID {
			items = append(items, item)
		}
		if assignee.Valid {
			last := &items[len(items)-1]
			last.Assignees = append(last.Assignees, assignee.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

func scanExpense(row scanner) (*models.Expense, error) {
	var (
		e                   models.Expense
		category, splitType string
		date                string
		subtotal, tax, tip  decimal.NullDecimal
		itemized            bool
		recurringID, period sql.NullString
	)
	err := row.Scan(&e.ID, &e.GroupID, &e.PayerID, &e.Amount, &e.Description, &category,
		&date, &splitType, &subtotal, &tax, &tip, &itemized,
		&recurringID, &period, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}

	e.Category = models.Category(category)
	e.SplitType = models.SplitType(splitType)
	e.RecurringID = recurringID.String
	e.RecurringPeriod = period.String
	if e.Date, err = time.Parse(models.DateLayout, date); err != nil {
		return nil, fmt.Errorf("bad expense date %q: %w", date, err)
	}
	if subtotal.Valid {
		e.Receipt = &models.Receipt{
			Subtotal: subtotal.Decimal,
			Tax:      tax.Decimal,
			Tip:      tip.Decimal,
			Itemized: itemized,
		}
	}
	return &e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
