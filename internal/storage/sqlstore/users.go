package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const userColumns = "id, email, display_name, password_hash, created_at, updated_at"

// CreateUser inserts a new user into the database.
// Emails are compared case-insensitively; a duplicate returns storage.ErrConflict.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.exec(ctx, query,
		user.ID,
		strings.ToLower(user.Email),
		user.DisplayName,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if s.dialect.uniqueViolation(err) {
		return fmt.Errorf("user %s: %w", user.Email, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.queryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?",
		strings.ToLower(email),
	)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", email, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.queryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetUsersByIDs retrieves multiple users by their IDs.
// Users that don't exist are omitted from the result.
func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	users := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	for _, batch := range batches(ids) {
		if err := s.loadUsers(ctx, users, batch); err != nil {
			return nil, err
		}
	}
	return users, nil
}

func (s *Store) loadUsers(ctx context.Context, users map[string]*models.User, ids []string) error {
	rows, err := s.query(ctx,
		"SELECT "+userColumns+" FROM users WHERE id IN ("+placeholders(len(ids))+")",
		stringArgs(ids)...,
	)
	if err != nil {
		return fmt.Errorf("failed to get users by IDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return fmt.Errorf("failed to scan user: %w", err)
		}
		users[user.ID] = user
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating users: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
