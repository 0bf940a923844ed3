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

const recurringColumns = `id, group_id, paid_by, amount, description, category, frequency,
	day_of_month, start_date, end_date, active, created_at`

// CreateRecurring persists a recurring expense template.
func (s *Store) CreateRecurring(ctx context.Context, r *models.RecurringExpense) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt == 0 {
		r.CreatedAt = time.Now().Unix()
	}
	if r.Frequency == "" {
		r.Frequency = models.FrequencyMonthly
	}

	_, err := s.exec(ctx,
		`INSERT INTO recurring_expenses (`+recurringColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.GroupID, r.PayerID, r.Amount, r.Description, string(r.Category),
		string(r.Frequency), r.DayOfMonth, nullDate(r.StartDate), nullDate(r.EndDate),
		r.Active, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert recurring expense: %w", err)
	}
	return nil
}

// GetRecurring retrieves a recurring expense template by ID.
func (s *Store) GetRecurring(ctx context.Context, recurringID string) (*models.RecurringExpense, error) {
	row := s.queryRow(ctx, "SELECT "+recurringColumns+" FROM recurring_expenses WHERE id = ?", recurringID)
	r, err := scanRecurring(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recurring expense %s: %w", recurringID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recurring expense: %w", err)
	}
	return r, nil
}

// ListRecurring returns templates matching filter, oldest first.
func (s *Store) ListRecurring(ctx context.Context, filter storage.RecurringFilter) ([]*models.RecurringExpense, error) {
	query := "SELECT " + recurringColumns + " FROM recurring_expenses WHERE 1 = 1"
	var args []any
	if filter.GroupID != "" {
		query += " AND group_id = ?"
		args = append(args, filter.GroupID)
	}
	if filter.ActiveOnly {
		query += " AND active = ?"
		args = append(args, true)
	}
	query += " ORDER BY created_at, id"

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring expenses: %w", err)
	}
	defer rows.Close()

	var list []*models.RecurringExpense
	for rows.Next() {
		r, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurring expense: %w", err)
		}
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recurring expenses: %w", err)
	}
	return list, nil
}

// SetRecurringActive pauses or resumes a template.
func (s *Store) SetRecurringActive(ctx context.Context, recurringID string, active bool) error {
	res, err := s.exec(ctx, "UPDATE recurring_expenses SET active = ? WHERE id = ?", active, recurringID)
	if err != nil {
		return fmt.Errorf("failed to update recurring expense: %w", err)
	}
	return mustAffect(res, "recurring expense", recurringID)
}

// DeleteRecurring removes a template. Expenses it already produced are kept.
func (s *Store) DeleteRecurring(ctx context.Context, recurringID string) error {
	res, err := s.exec(ctx, "DELETE FROM recurring_expenses WHERE id = ?", recurringID)
	if err != nil {
		return fmt.Errorf("failed to delete recurring expense: %w", err)
	}
	return mustAffect(res, "recurring expense", recurringID)
}

func scanRecurring(row scanner) (*models.RecurringExpense, error) {
	var (
		r                   models.RecurringExpense
		category, frequency string
		start, end          sql.NullString
	)
	err := row.Scan(&r.ID, &r.GroupID, &r.PayerID, &r.Amount, &r.Description, &category,
		&frequency, &r.DayOfMonth, &start, &end, &r.Active, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.Category = models.Category(category)
	r.Frequency = models.Frequency(frequency)
	if r.StartDate, err = parseNullDate(start); err != nil {
		return nil, err
	}
	if r.EndDate, err = parseNullDate(end); err != nil {
		return nil, err
	}
	return &r, nil
}

func nullDate(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(models.DateLayout), Valid: true}
}

func parseNullDate(s sql.NullString) (time.Time, error) {
	if !s.Valid || s.String == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(models.DateLayout, s.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q: %w", s.String, err)
	}
	return t, nil
}
