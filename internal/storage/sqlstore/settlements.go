package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const settlementColumns = "id, group_id, from_user_id, to_user_id, amount, status, note, created_at, confirmed_at"

// CreateSettlement persists a new settlement to the database.
func (s *Store) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	// Generate ID if not set
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}
	if settlement.Status == "" {
		settlement.Status = models.SettlementPending
	}

	_, err := s.exec(ctx,
		`INSERT INTO settlements (`+settlementColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.GroupID, settlement.FromUserID, settlement.ToUserID,
		settlement.Amount, string(settlement.Status), settlement.Note,
		settlement.CreatedAt, settlement.ConfirmedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *Store) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	row := s.queryRow(ctx, "SELECT "+settlementColumns+" FROM settlements WHERE id = ?", settlementID)
	settlement, err := scanSettlement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return settlement, nil
}

// ConfirmSettlement flips a pending settlement to confirmed. The status check
// is part of the UPDATE, so of two concurrent confirmations only one wins.
func (s *Store) ConfirmSettlement(ctx context.Context, settlementID string, confirmedAt int64) error {
	res, err := s.exec(ctx,
		"UPDATE settlements SET status = ?, confirmed_at = ? WHERE id = ? AND status = ?",
		string(models.SettlementConfirmed), confirmedAt, settlementID, string(models.SettlementPending),
	)
	if err != nil {
		return fmt.Errorf("failed to confirm settlement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n > 0 {
		return nil
	}

	// Nothing changed: either the row is gone or it is no longer pending.
	if _, err := s.GetSettlement(ctx, settlementID); err != nil {
		return err
	}
	return fmt.Errorf("settlement %s is not pending: %w", settlementID, storage.ErrConflict)
}

// ListSettlements retrieves settlements matching filter, newest first.
func (s *Store) ListSettlements(ctx context.Context, filter storage.SettlementFilter) ([]*models.Settlement, error) {
	var (
		where []string
		args  []any
	)
	if filter.GroupID != "" {
		where = append(where, "group_id = ?")
		args = append(args, filter.GroupID)
	}
	if filter.ToUserID != "" {
		where = append(where, "to_user_id = ?")
		args = append(args, filter.ToUserID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}

	query := "SELECT " + settlementColumns + " FROM settlements"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

func scanSettlement(row scanner) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var status string
	err := row.Scan(&settlement.ID, &settlement.GroupID, &settlement.FromUserID, &settlement.ToUserID,
		&settlement.Amount, &status, &settlement.Note, &settlement.CreatedAt, &settlement.ConfirmedAt)
	if err != nil {
		return nil, err
	}
	settlement.Status = models.SettlementStatus(status)
	return settlement, nil
}
