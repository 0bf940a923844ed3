package ledger_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

var testNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

var errInjected = errors.New("injected failure")

// faultyStore fails the named write methods, including inside transactions.
type faultyStore struct {
	storage.Store
	fail map[string]bool
}

func failing(store storage.Store, methods ...string) *faultyStore {
	fail := make(map[string]bool, len(methods))
	for _, m := range methods {
		fail[m] = true
	}
	return &faultyStore{Store: store, fail: fail}
}

func (f *faultyStore) WithTx(ctx context.Context, fn func(tx storage.Store) error) error {
	return f.Store.WithTx(ctx, func(tx storage.Store) error {
		return fn(&faultyStore{Store: tx, fail: f.fail})
	})
}

func (f *faultyStore) InsertSplits(ctx context.Context, expenseID string, splits []models.Split) error {
	if f.fail["InsertSplits"] {
		return errInjected
	}
	return f.Store.InsertSplits(ctx, expenseID, splits)
}

func (f *faultyStore) DeleteSplits(ctx context.Context, expenseID string) error {
	if f.fail["DeleteSplits"] {
		return errInjected
	}
	return f.Store.DeleteSplits(ctx, expenseID)
}

func (f *faultyStore) AddGroupMembers(ctx context.Context, groupID string, userIDs []string) error {
	if f.fail["AddGroupMembers"] {
		return errInjected
	}
	return f.Store.AddGroupMembers(ctx, groupID, userIDs)
}

type fixture struct {
	ctx    context.Context
	store  storage.Store
	ledger *ledger.Ledger
	events *recorder

	alice, bob, carol, dave *models.User
	group                   *models.Group
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	f := &fixture{ctx: context.Background(), store: store, events: &recorder{}}
	f.ledger = ledger.New(store,
		ledger.WithPublisher(f.events),
		ledger.WithClock(func() time.Time { return testNow }),
	)

	f.alice = f.user(t, "alice@example.com")
	f.bob = f.user(t, "bob@example.com")
	f.carol = f.user(t, "carol@example.com")
	f.dave = f.user(t, "dave@example.com") // never joins the group

	f.group, err = f.ledger.CreateGroup(f.ctx, f.alice.ID, ledger.GroupInput{
		Name:      "Flat 4B",
		MemberIDs: []string{f.bob.ID, f.carol.ID},
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u := models.NewUser(email, email, "hash")
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	return u
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireAmount(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.StringFixed(2), msgAndArgs)
}
