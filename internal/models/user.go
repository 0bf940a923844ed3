package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
// The user ID is the participant identifier used throughout the ledger.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique). Used for login and for
	// adding members to groups.
	Email string

	// DisplayName is the name shown to other group members.
	DisplayName string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	CreatedAt int64
	UpdatedAt int64
}

// NewUser builds a User with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
