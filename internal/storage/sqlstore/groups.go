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

// CreateGroup persists a new group with its members.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	return s.atomic(ctx, func(ts *Store) error {
		_, err := ts.exec(ctx,
			"INSERT INTO groups (id, name, description, created_by, created_at) VALUES (?, ?, ?, ?, ?)",
			group.ID, group.Name, group.Description, group.CreatedBy, group.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}
		return ts.insertMembers(ctx, group.ID, group.Members, group.CreatedAt)
	})
}

// GetGroup retrieves a group by ID with members in join order.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := s.queryRow(ctx,
		"SELECT id, name, description, created_by, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &group.Description, &group.CreatedBy, &group.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	members, err := s.members(ctx, groupID)
	if err != nil {
		return nil, err
	}
	group.Members = members
	return group, nil
}

// ListGroupsForUser returns every group the user belongs to, newest first.
func (s *Store) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.query(ctx,
		`SELECT g.id, g.name, g.description, g.created_by, g.created_at
		 FROM groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = ?
		 ORDER BY g.created_at DESC, g.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.Description, &group.CreatedBy, &group.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	// Members are loaded after the cursor is closed; a transaction holds a
	// single connection.
	for _, group := range groups {
		members, err := s.members(ctx, group.ID)
		if err != nil {
			return nil, err
		}
		group.Members = members
	}
	return groups, nil
}

// AddGroupMembers inserts members, skipping users already in the group.
func (s *Store) AddGroupMembers(ctx context.Context, groupID string, userIDs []string) error {
	return s.atomic(ctx, func(ts *Store) error {
		var exists int
		err := ts.queryRow(ctx, "SELECT 1 FROM groups WHERE id = ?", groupID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to check group: %w", err)
		}
		return ts.insertMembers(ctx, groupID, userIDs, time.Now().Unix())
	})
}

func (s *Store) insertMembers(ctx context.Context, groupID string, userIDs []string, joinedAt int64) error {
	for _, userID := range userIDs {
		_, err := s.exec(ctx,
			`INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)
			 ON CONFLICT (group_id, user_id) DO NOTHING`,
			groupID, userID, joinedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}
	}
	return nil
}

func (s *Store) members(ctx context.Context, groupID string) ([]string, error) {
	rows, err := s.query(ctx,
		"SELECT user_id FROM group_members WHERE group_id = ? ORDER BY seq",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}
