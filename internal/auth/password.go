package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const minPasswordLength = 8

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("a valid email is required")
)

// UserStorage is the part of storage.Store the authenticator needs.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// PasswordAuthenticator stores bcrypt hashes of user passwords.
type PasswordAuthenticator struct {
	storage UserStorage
	cost    int
}

// NewPasswordAuthenticator creates a password authenticator. cost is the
// bcrypt cost; values outside bcrypt's range fall back to the default.
func NewPasswordAuthenticator(storage UserStorage, cost int) *PasswordAuthenticator {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordAuthenticator{storage: storage, cost: cost}
}

// ValidateCredential checks the minimum password length.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Register hashes the password and creates the user.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, displayName, credential string) (*models.User, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(credential), a.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = email[:strings.Index(email, "@")]
	}

	user := models.NewUser(email, displayName, string(hash))
	if err := a.storage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate compares the password against the stored hash.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.User, error) {
	user, err := a.storage.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
