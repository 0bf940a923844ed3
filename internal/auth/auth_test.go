package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

type memUsers struct {
	byEmail map[string]*models.User
}

func (m *memUsers) CreateUser(_ context.Context, u *models.User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return storage.ErrConflict
	}
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return u, nil
}

func newAuthenticator() *PasswordAuthenticator {
	return NewPasswordAuthenticator(&memUsers{byEmail: map[string]*models.User{}}, bcrypt.MinCost)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	a := newAuthenticator()

	user, err := a.Register(ctx, "  Alice@Example.com ", "", "correct horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email: expected normalized address, got %q", user.Email)
	}
	if user.DisplayName != "alice" {
		t.Errorf("display name: expected fallback 'alice', got %q", user.DisplayName)
	}
	if user.PasswordHash == "correct horse" {
		t.Error("password stored in clear text")
	}

	got, err := a.Authenticate(ctx, "ALICE@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("expected user %s, got %s", user.ID, got.ID)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "alice@example.com", "battery staple"},
		{"unknown email", "bob@example.com", "correct horse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Authenticate(ctx, tt.email, tt.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestRegisterRejects(t *testing.T) {
	ctx := context.Background()
	a := newAuthenticator()
	if _, err := a.Register(ctx, "taken@example.com", "Taken", "long enough"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"short password", "new@example.com", "short", ErrWeakPassword},
		{"duplicate email", "TAKEN@example.com", "long enough", ErrEmailExists},
		{"no at sign", "not-an-email", "long enough", ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Register(ctx, tt.email, "x", tt.password); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := &models.User{ID: "u-1", Email: "u@example.com"}

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != "u-1" || claims.Email != "u@example.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	if _, err := NewJWTManager("other-secret", time.Hour).Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign secret: expected ErrInvalidToken, got %v", err)
	}

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: expected ErrInvalidToken, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		err    error
	}{
		{"Bearer abc.def", "abc.def", nil},
		{"bearer  abc ", "abc", nil},
		{"", "", ErrMissingToken},
		{"Basic abc", "", ErrInvalidToken},
		{"Bearer", "", ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(strings.ReplaceAll(tt.header, " ", "_"), func(t *testing.T) {
			got, err := BearerToken(tt.header)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected error %v, got %v", tt.err, err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
