package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/storage"
)

func TestRecurringTemplates(t *testing.T) {
	f := newFixture(t)

	base := ledger.RecurringInput{
		GroupID:     f.group.ID,
		Amount:      dec("1200"),
		Description: "Rent",
		Category:    "rent",
		DayOfMonth:  1,
	}

	t.Run("validation", func(t *testing.T) {
		for name, mutate := range map[string]func(*ledger.RecurringInput){
			"day zero":       func(in *ledger.RecurringInput) { in.DayOfMonth = 0 },
			"day 32":         func(in *ledger.RecurringInput) { in.DayOfMonth = 32 },
			"weekly":         func(in *ledger.RecurringInput) { in.Frequency = "weekly" },
			"no description": func(in *ledger.RecurringInput) { in.Description = "" },
			"negative":       func(in *ledger.RecurringInput) { in.Amount = dec("-1") },
			"end before start": func(in *ledger.RecurringInput) {
				in.StartDate = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
				in.EndDate = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
			},
		} {
			in := base
			mutate(&in)
			_, err := f.ledger.CreateRecurring(f.ctx, f.alice.ID, in)
			assert.ErrorIs(t, err, ledger.ErrInvalidArgument, name)
		}

		_, err := f.ledger.CreateRecurring(f.ctx, f.dave.ID, base)
		assert.ErrorIs(t, err, ledger.ErrPermissionDenied)
	})

	r, err := f.ledger.CreateRecurring(f.ctx, f.alice.ID, base)
	require.NoError(t, err)
	assert.True(t, r.Active)
	assert.Equal(t, f.alice.ID, r.PayerID)

	list, err := f.ledger.ListRecurring(f.ctx, f.bob.ID, f.group.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = f.ledger.ToggleRecurring(f.ctx, f.bob.ID, r.ID)
	require.ErrorIs(t, err, ledger.ErrPermissionDenied)

	paused, err := f.ledger.ToggleRecurring(f.ctx, f.alice.ID, r.ID)
	require.NoError(t, err)
	assert.False(t, paused.Active)

	resumed, err := f.ledger.ToggleRecurring(f.ctx, f.alice.ID, r.ID)
	require.NoError(t, err)
	assert.True(t, resumed.Active)

	require.ErrorIs(t, f.ledger.DeleteRecurring(f.ctx, f.bob.ID, r.ID), ledger.ErrPermissionDenied)
	require.NoError(t, f.ledger.DeleteRecurring(f.ctx, f.alice.ID, r.ID))
	require.ErrorIs(t, f.ledger.DeleteRecurring(f.ctx, f.alice.ID, r.ID), ledger.ErrNotFound)
}

func TestMaterializeRecurring(t *testing.T) {
	f := newFixture(t)

	r, err := f.ledger.CreateRecurring(f.ctx, f.alice.ID, ledger.RecurringInput{
		GroupID: f.group.ID, Amount: dec("100"), Description: "Internet", Category: "utilities", DayOfMonth: 15,
	})
	require.NoError(t, err)

	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	expense, err := f.ledger.MaterializeRecurring(f.ctx, r, day, "2024-03")
	require.NoError(t, err)
	require.NotNil(t, expense)
	assert.Equal(t, "Internet (Auto)", expense.Description)
	assert.Equal(t, r.ID, expense.RecurringID)
	require.Len(t, expense.Splits, 3)
	requireAmount(t, "33.34", expense.Splits[0].AmountOwed)

	again, err := f.ledger.MaterializeRecurring(f.ctx, r, day, "2024-03")
	require.NoError(t, err)
	assert.Nil(t, again, "a period materializes once")

	expenses, err := f.store.ListExpenses(f.ctx, storage.ExpenseFilter{GroupID: f.group.ID})
	require.NoError(t, err)
	assert.Len(t, expenses, 1)

	assert.Contains(t, f.events.types(), events.RecurringMaterialized)

	t.Run("deleting the template keeps its expenses", func(t *testing.T) {
		require.NoError(t, f.ledger.DeleteRecurring(f.ctx, f.alice.ID, r.ID))
		got, err := f.ledger.GetExpense(f.ctx, f.alice.ID, expense.ID)
		require.NoError(t, err)
		assert.Empty(t, got.RecurringID)
	})
}
