// Package ledger implements the expense, balance, settlement, recurring and
// budget operations on top of a storage.Store. Every operation takes the
// acting user's ID and enforces group membership and ownership rules.
package ledger

import (
	"context"
	"time"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const defaultBudgetConcurrency = 4

// Ledger coordinates calculator, storage and event publishing.
type Ledger struct {
	store             storage.Store
	publisher         events.Publisher
	metrics           *metrics.Metrics
	budgetConcurrency int
	now               func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPublisher sets where committed changes are announced.
func WithPublisher(p events.Publisher) Option {
	return func(l *Ledger) { l.publisher = p }
}

// WithMetrics records committed writes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

// WithBudgetConcurrency bounds concurrent budget evaluations.
func WithBudgetConcurrency(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.budgetConcurrency = n
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New creates a Ledger over store.
func New(store storage.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:             store,
		publisher:         events.Nop{},
		budgetConcurrency: defaultBudgetConcurrency,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Store returns the underlying store.
func (l *Ledger) Store() storage.Store {
	return l.store
}

// today is the current civil date at midnight UTC.
func (l *Ledger) today() time.Time {
	return civilDate(l.now())
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// committed records metrics and publishes an event for a write that has
// already committed.
func (l *Ledger) committed(ctx context.Context, op string, e events.Event) {
	l.metrics.Write(op)
	events.Emit(ctx, l.publisher, e)
}

// memberGroup loads a group and checks that actor belongs to it.
func (l *Ledger) memberGroup(ctx context.Context, store storage.Store, groupID, actor string) (*models.Group, error) {
	if groupID == "" {
		return nil, invalid("group_id is required")
	}
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, translate(err)
	}
	if !group.HasMember(actor) {
		return nil, denied("not a member of group %s", groupID)
	}
	return group, nil
}
