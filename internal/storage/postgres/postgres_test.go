package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unique", &pq.Error{Code: "23505"}, true},
		{"wrapped", fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), true},
		{"foreign key", &pq.Error{Code: "23503"}, false},
		{"other", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Errorf("isUniqueViolation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// TestStore runs against a real server when SPLITLEDGER_TEST_POSTGRES_DSN is set.
func TestStore(t *testing.T) {
	dsn := os.Getenv("SPLITLEDGER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SPLITLEDGER_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	store, err := New(ctx, dsn, Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer store.Close()

	user := models.NewUser(fmt.Sprintf("pg-%d@example.com", time.Now().UnixNano()), "PG", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := store.CreateUser(ctx, user); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("Expected ErrConflict on duplicate user, got %v", err)
	}

	group := &models.Group{Name: "pg", CreatedBy: user.ID, Members: []string{user.ID}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	got, err := store.GetGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if len(got.Members) != 1 || got.Members[0] != user.ID {
		t.Errorf("Members = %v, want [%s]", got.Members, user.ID)
	}
}
