// Package events fans ledger changes out to subscribers after they commit.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// Type names an event; it doubles as the AMQP routing key.
type Type string

const (
	ExpenseCreated        Type = "expense.created"
	ExpenseUpdated        Type = "expense.updated"
	ExpenseDeleted        Type = "expense.deleted"
	SettlementCreated     Type = "settlement.created"
	SettlementConfirmed   Type = "settlement.confirmed"
	RecurringMaterialized Type = "recurring.materialized"
)

// Event is a committed change in one group.
type Event struct {
	Type     Type      `json:"type"`
	GroupID  string    `json:"group_id"`
	EntityID string    `json:"entity_id"`
	ActorID  string    `json:"actor_id,omitempty"`
	Amount   string    `json:"amount,omitempty"`
	Time     time.Time `json:"time"`
}

// New builds an event stamped with the current time.
func New(t Type, groupID, entityID, actorID string) Event {
	return Event{Type: t, GroupID: groupID, EntityID: entityID, ActorID: actorID, Time: time.Now().UTC()}
}

// WithAmount returns a copy of e carrying amount.
func (e Event) WithAmount(amount string) Event {
	e.Amount = amount
	return e
}

// JSON encodes the event for the wire.
func (e Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Emit publishes e and logs a failure instead of returning it. The event
// describes a change that has already committed.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		slog.WarnContext(ctx, "Failed to publish event",
			"type", e.Type,
			"group_id", e.GroupID,
			"entity_id", e.EntityID,
			"error", err,
		)
	}
}
