package ledger_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
)

func TestCreateSettlement_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		actor string
		in    ledger.SettlementInput
		want  error
	}{
		{"recorded for someone else", f.alice.ID, ledger.SettlementInput{GroupID: f.group.ID, FromUserID: f.bob.ID, ToUserID: f.carol.ID, Amount: dec("5")}, ledger.ErrPermissionDenied},
		{"to self", f.alice.ID, ledger.SettlementInput{GroupID: f.group.ID, ToUserID: f.alice.ID, Amount: dec("5")}, ledger.ErrInvalidArgument},
		{"missing recipient", f.alice.ID, ledger.SettlementInput{GroupID: f.group.ID, Amount: dec("5")}, ledger.ErrInvalidArgument},
		{"zero amount", f.alice.ID, ledger.SettlementInput{GroupID: f.group.ID, ToUserID: f.bob.ID}, ledger.ErrInvalidArgument},
		{"recipient outside group", f.alice.ID, ledger.SettlementInput{GroupID: f.group.ID, ToUserID: f.dave.ID, Amount: dec("5")}, ledger.ErrInvalidArgument},
		{"actor outside group", f.dave.ID, ledger.SettlementInput{GroupID: f.group.ID, ToUserID: f.alice.ID, Amount: dec("5")}, ledger.ErrPermissionDenied},
		{"unknown group", f.alice.ID, ledger.SettlementInput{GroupID: "missing", ToUserID: f.bob.ID, Amount: dec("5")}, ledger.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.CreateSettlement(f.ctx, tt.actor, tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSettlementLifecycle(t *testing.T) {
	f := newFixture(t)

	s, err := f.ledger.CreateSettlement(f.ctx, f.bob.ID, ledger.SettlementInput{
		GroupID:  f.group.ID,
		ToUserID: f.alice.ID,
		Amount:   dec("20"),
		Note:     " venmo ",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SettlementPending, s.Status)
	assert.Equal(t, f.bob.ID, s.FromUserID)
	assert.Equal(t, "venmo", s.Note)

	pending, err := f.ledger.ListPendingSettlements(f.ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, s.ID, pending[0].ID)

	_, err = f.ledger.ConfirmSettlement(f.ctx, f.bob.ID, s.ID)
	require.ErrorIs(t, err, ledger.ErrPermissionDenied, "the payer cannot confirm")

	confirmed, err := f.ledger.ConfirmSettlement(f.ctx, f.alice.ID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SettlementConfirmed, confirmed.Status)
	assert.Equal(t, testNow.Unix(), confirmed.ConfirmedAt)

	_, err = f.ledger.ConfirmSettlement(f.ctx, f.alice.ID, s.ID)
	require.ErrorIs(t, err, ledger.ErrAlreadyConfirmed)

	_, err = f.ledger.ConfirmSettlement(f.ctx, f.alice.ID, "missing")
	require.ErrorIs(t, err, ledger.ErrNotFound)

	pending, err = f.ledger.ListPendingSettlements(f.ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := f.ledger.ListGroupSettlements(f.ctx, f.carol.ID, f.group.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	assert.Equal(t, []events.Type{events.SettlementCreated, events.SettlementConfirmed}, f.events.types())
}

func TestConfirmSettlement_OnlyOnceUnderContention(t *testing.T) {
	f := newFixture(t)

	s, err := f.ledger.CreateSettlement(f.ctx, f.bob.ID, ledger.SettlementInput{
		GroupID: f.group.ID, ToUserID: f.alice.ID, Amount: dec("7.50"),
	})
	require.NoError(t, err)

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, lost int
		other    []error
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.ConfirmSettlement(f.ctx, f.alice.ID, s.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ledger.ErrAlreadyConfirmed):
				lost++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, other)
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, lost)
}
