package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

func TestCreateExpense_DefaultsToAllMembers(t *testing.T) {
	f := newFixture(t)

	expense, err := f.ledger.CreateExpense(f.ctx, f.bob.ID, ledger.ExpenseInput{
		GroupID:     f.group.ID,
		Amount:      dec("10"),
		Description: "  Groceries ",
		Category:    "food",
	})
	require.NoError(t, err)

	assert.Equal(t, f.bob.ID, expense.PayerID, "payer defaults to the actor")
	assert.Equal(t, "Groceries", expense.Description)
	assert.Equal(t, models.SplitEqual, expense.SplitType)
	assert.True(t, expense.Date.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)), "date defaults to today")

	stored, err := f.ledger.GetExpense(f.ctx, f.carol.ID, expense.ID)
	require.NoError(t, err)
	require.Len(t, stored.Splits, 3)
	assert.Equal(t, []string{f.alice.ID, f.bob.ID, f.carol.ID}, stored.Participants())
	requireAmount(t, "3.34", stored.Splits[0].AmountOwed)
	requireAmount(t, "3.33", stored.Splits[1].AmountOwed)
	requireAmount(t, "3.33", stored.Splits[2].AmountOwed)

	for _, s := range stored.Splits {
		assert.Equal(t, s.UserID == f.bob.ID, s.Paid, "paid flag for %s", s.UserID)
	}

	assert.Equal(t, []events.Type{events.ExpenseCreated}, f.events.types())
}

func TestCreateExpense_Validation(t *testing.T) {
	f := newFixture(t)

	base := func() ledger.ExpenseInput {
		return ledger.ExpenseInput{GroupID: f.group.ID, Amount: dec("30"), Description: "Taxi"}
	}

	tests := []struct {
		name   string
		actor  string
		mutate func(*ledger.ExpenseInput)
		want   error
	}{
		{"actor not a member", f.dave.ID, func(*ledger.ExpenseInput) {}, ledger.ErrPermissionDenied},
		{"unknown group", f.alice.ID, func(in *ledger.ExpenseInput) { in.GroupID = "missing" }, ledger.ErrNotFound},
		{"missing group", f.alice.ID, func(in *ledger.ExpenseInput) { in.GroupID = "" }, ledger.ErrInvalidArgument},
		{"payer not a member", f.alice.ID, func(in *ledger.ExpenseInput) { in.PayerID = f.dave.ID }, ledger.ErrInvalidArgument},
		{"participant not a member", f.alice.ID, func(in *ledger.ExpenseInput) { in.Participants = []string{f.alice.ID, f.dave.ID} }, ledger.ErrInvalidArgument},
		{"duplicate participant", f.alice.ID, func(in *ledger.ExpenseInput) { in.Participants = []string{f.bob.ID, f.bob.ID} }, ledger.ErrInvalidArgument},
		{"zero amount", f.alice.ID, func(in *ledger.ExpenseInput) { in.Amount = decimal.Zero }, ledger.ErrInvalidArgument},
		{"blank description", f.alice.ID, func(in *ledger.ExpenseInput) { in.Description = "   " }, ledger.ErrInvalidArgument},
		{"unknown category", f.alice.ID, func(in *ledger.ExpenseInput) { in.Category = "yachts" }, ledger.ErrInvalidArgument},
		{"unknown policy", f.alice.ID, func(in *ledger.ExpenseInput) { in.Policy.Type = "lottery" }, ledger.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base()
			tt.mutate(&in)
			_, err := f.ledger.CreateExpense(f.ctx, tt.actor, in)
			require.ErrorIs(t, err, tt.want)
		})
	}

	expenses, err := f.store.ListExpenses(f.ctx, storage.ExpenseFilter{GroupID: f.group.ID})
	require.NoError(t, err)
	assert.Empty(t, expenses, "rejected expenses must not be written")
}

func TestCreateExpense_CustomMismatchReportsDelta(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.CreateExpense(f.ctx, f.alice.ID, ledger.ExpenseInput{
		GroupID:      f.group.ID,
		Amount:       dec("50"),
		Description:  "Concert",
		Participants: []string{f.alice.ID, f.bob.ID},
		Policy: calculator.Policy{
			Type:    models.SplitCustom,
			Amounts: map[string]decimal.Decimal{f.alice.ID: dec("20"), f.bob.ID: dec("25")},
		},
	})
	require.ErrorIs(t, err, ledger.ErrInvalidArgument)

	mismatch, ok := ledger.Mismatch(err)
	require.True(t, ok, "mismatch error should be reachable")
	requireAmount(t, "-5", mismatch.Delta())
}

func TestCreateExpense_Itemized(t *testing.T) {
	f := newFixture(t)

	expense, err := f.ledger.CreateExpense(f.ctx, f.alice.ID, ledger.ExpenseInput{
		GroupID:      f.group.ID,
		Amount:       dec("36"),
		Description:  "Dinner",
		Category:     "food",
		Participants: []string{f.alice.ID, f.bob.ID, f.carol.ID},
		Policy: calculator.Policy{
			Type: models.SplitItemized,
			Items: []calculator.Item{
				{Description: "Pizza", Price: dec("20"), AssignedTo: []string{f.alice.ID, f.bob.ID}},
				{Description: "Wine", Price: dec("10"), AssignedTo: []string{f.bob.ID}},
			},
			Tax: dec("2.5"),
			Tip: dec("3.5"),
		},
	})
	require.NoError(t, err)

	stored, err := f.ledger.GetExpense(f.ctx, f.bob.ID, expense.ID)
	require.NoError(t, err)
	requireAmount(t, "12", stored.Splits[0].AmountOwed)
	requireAmount(t, "24", stored.Splits[1].AmountOwed)
	requireAmount(t, "0", stored.Splits[2].AmountOwed)

	require.Len(t, stored.Items, 2)
	assert.Equal(t, "Pizza", stored.Items[0].Name)
	assert.Equal(t, []string{f.alice.ID, f.bob.ID}, stored.Items[0].Assignees)
	require.NotNil(t, stored.Receipt)
	assert.True(t, stored.Receipt.Itemized)
	requireAmount(t, "30", stored.Receipt.Subtotal)
}

func TestCreateExpense_IsAtomic(t *testing.T) {
	f := newFixture(t)
	broken := ledger.New(failing(f.store, "InsertSplits"), ledger.WithPublisher(f.events))

	_, err := broken.CreateExpense(f.ctx, f.alice.ID, ledger.ExpenseInput{
		GroupID:     f.group.ID,
		Amount:      dec("99"),
		Description: "Half written",
	})
	require.ErrorIs(t, err, errInjected)
	assert.NotErrorIs(t, err, ledger.ErrInvalidArgument)

	expenses, err := f.store.ListExpenses(f.ctx, storage.ExpenseFilter{GroupID: f.group.ID})
	require.NoError(t, err)
	assert.Empty(t, expenses, "expense row must roll back with its splits")
	assert.Empty(t, f.events.types(), "nothing is published for a failed write")
}

func TestPreviewSplit(t *testing.T) {
	f := newFixture(t)

	preview, err := f.ledger.PreviewSplit(f.ctx, f.alice.ID, ledger.ExpenseInput{
		GroupID: f.group.ID,
		Amount:  dec("100"),
		Policy: calculator.Policy{
			Type: models.SplitPercentage,
			Percentages: map[string]decimal.Decimal{
				f.alice.ID: dec("33.33"), f.bob.ID: dec("33.33"), f.carol.ID: dec("33.34"),
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, preview.Shares, 3)
	requireAmount(t, "33.34", preview.Shares[2].Amount)
	assert.Nil(t, preview.Breakdown)

	_, err = f.ledger.PreviewSplit(f.ctx, f.dave.ID, ledger.ExpenseInput{GroupID: f.group.ID, Amount: dec("1")})
	require.ErrorIs(t, err, ledger.ErrPermissionDenied)

	t.Run("without a group", func(t *testing.T) {
		preview, err := f.ledger.PreviewSplit(f.ctx, f.dave.ID, ledger.ExpenseInput{
			Amount:       dec("1"),
			Participants: []string{"x", "y", "z"},
		})
		require.NoError(t, err)
		requireAmount(t, "0.34", preview.Shares[0].Amount)
	})

	expenses, err := f.store.ListExpenses(f.ctx, storage.ExpenseFilter{GroupID: f.group.ID})
	require.NoError(t, err)
	assert.Empty(t, expenses, "preview must not persist")
}

func TestUpdateExpense(t *testing.T) {
	f := newFixture(t)

	expense, err := f.ledger.CreateExpense(f.ctx, f.alice.ID, ledger.ExpenseInput{
		GroupID:      f.group.ID,
		Amount:       dec("60"),
		Description:  "Utilities",
		Category:     "utilities",
		Participants: []string{f.carol.ID, f.alice.ID},
		Policy: calculator.Policy{
			Type:    models.SplitCustom,
			Amounts: map[string]decimal.Decimal{f.carol.ID: dec("50"), f.alice.ID: dec("10")},
		},
	})
	require.NoError(t, err)

	t.Run("only the payer can edit", func(t *testing.T) {
		amount := dec("1")
		_, err := f.ledger.UpdateExpense(f.ctx, f.bob.ID, expense.ID, ledger.ExpenseUpdate{Amount: &amount})
		require.ErrorIs(t, err, ledger.ErrPermissionDenied)

		stored, err := f.ledger.GetExpense(f.ctx, f.alice.ID, expense.ID)
		require.NoError(t, err)
		requireAmount(t, "60", stored.Amount)
		assert.Equal(t, models.SplitCustom, stored.SplitType)
		require.Len(t, stored.Splits, 2)
		requireAmount(t, "50", stored.Splits[0].AmountOwed)
		requireAmount(t, "10", stored.Splits[1].AmountOwed)
	})

	t.Run("nothing to update", func(t *testing.T) {
		_, err := f.ledger.UpdateExpense(f.ctx, f.alice.ID, expense.ID, ledger.ExpenseUpdate{})
		require.ErrorIs(t, err, ledger.ErrInvalidArgument)
	})

	t.Run("description keeps the split", func(t *testing.T) {
		d := "Power and water"
		updated, err := f.ledger.UpdateExpense(f.ctx, f.alice.ID, expense.ID, ledger.ExpenseUpdate{Description: &d})
		require.NoError(t, err)
		assert.Equal(t, d, updated.Description)
		requireAmount(t, "50", updated.Splits[0].AmountOwed)
	})

	t.Run("new amount is split equally over existing participants", func(t *testing.T) {
		amount := dec("25.01")
		category := "other"
		_, err := f.ledger.UpdateExpense(f.ctx, f.alice.ID, expense.ID, ledger.ExpenseUpdate{Amount: &amount, Category: &category})
		require.NoError(t, err)

		stored, err := f.ledger.GetExpense(f.ctx, f.alice.ID, expense.ID)
		require.NoError(t, err)
		requireAmount(t, "25.01", stored.Amount)
		assert.Equal(t, models.CategoryOther, stored.Category)
		assert.Equal(t, models.SplitEqual, stored.SplitType)
		assert.Equal(t, []string{f.carol.ID, f.alice.ID}, stored.Participants(), "participant order is kept")
		requireAmount(t, "12.51", stored.Splits[0].AmountOwed)
		requireAmount(t, "12.50", stored.Splits[1].AmountOwed)
		assert.True(t, stored.Splits[1].Paid)
		assert.False(t, stored.Splits[0].Paid)
	})

	t.Run("missing expense", func(t *testing.T) {
		d := "x"
		_, err := f.ledger.UpdateExpense(f.ctx, f.alice.ID, "missing", ledger.ExpenseUpdate{Description: &d})
		require.ErrorIs(t, err, ledger.ErrNotFound)
	})
}

func TestUpdateExpense_IsAtomic(t *testing.T) {
	for _, method := range []string{"DeleteSplits", "InsertSplits"} {
		t.Run(method, func(t *testing.T) {
			f := newFixture(t)
			expense, err := f.ledger.CreateExpense(f.ctx, f.alice.ID, ledger.ExpenseInput{
				GroupID:      f.group.ID,
				Amount:       dec("60"),
				Description:  "Utilities",
				Participants: []string{f.carol.ID, f.alice.ID},
				Policy: calculator.Policy{
					Type:    models.SplitCustom,
					Amounts: map[string]decimal.Decimal{f.carol.ID: dec("50"), f.alice.ID: dec("10")},
				},
			})
			require.NoError(t, err)

			broken := ledger.New(failing(f.store, method), ledger.WithPublisher(f.events))
			amount := dec("90")
			_, err = broken.UpdateExpense(f.ctx, f.alice.ID, expense.ID, ledger.ExpenseUpdate{Amount: &amount})
			require.ErrorIs(t, err, errInjected)

			stored, err := f.ledger.GetExpense(f.ctx, f.alice.ID, expense.ID)
			require.NoError(t, err)
			requireAmount(t, "60", stored.Amount)
			assert.Equal(t, models.SplitCustom, stored.SplitType)
			require.Len(t, stored.Splits, 2, "splits must survive a failed re-split")
			requireAmount(t, "50", stored.Splits[0].AmountOwed)
			requireAmount(t, "10", stored.Splits[1].AmountOwed)
			assert.Equal(t, []events.Type{events.ExpenseCreated}, f.events.types())
		})
	}
}

func TestDeleteExpense(t *testing.T) {
	f := newFixture(t)

	expense, err := f.ledger.CreateExpense(f.ctx, f.bob.ID, ledger.ExpenseInput{
		GroupID: f.group.ID, Amount: dec("12"), Description: "Snacks",
	})
	require.NoError(t, err)

	require.ErrorIs(t, f.ledger.DeleteExpense(f.ctx, f.alice.ID, expense.ID), ledger.ErrPermissionDenied)
	require.NoError(t, f.ledger.DeleteExpense(f.ctx, f.bob.ID, expense.ID))

	_, err = f.ledger.GetExpense(f.ctx, f.bob.ID, expense.ID)
	require.ErrorIs(t, err, ledger.ErrNotFound)
	require.ErrorIs(t, f.ledger.DeleteExpense(f.ctx, f.bob.ID, expense.ID), ledger.ErrNotFound)

	assert.Equal(t, []events.Type{events.ExpenseCreated, events.ExpenseDeleted}, f.events.types())
}

func TestListAndSearchExpenses(t *testing.T) {
	f := newFixture(t)

	other, err := f.ledger.CreateGroup(f.ctx, f.dave.ID, ledger.GroupInput{Name: "Ski trip", MemberIDs: []string{f.alice.ID}})
	require.NoError(t, err)

	create := func(actor, groupID, description, category string) {
		_, err := f.ledger.CreateExpense(f.ctx, actor, ledger.ExpenseInput{
			GroupID: groupID, Amount: dec("10"), Description: description, Category: category,
		})
		require.NoError(t, err)
	}
	create(f.alice.ID, f.group.ID, "Pizza night", "food")
	create(f.bob.ID, f.group.ID, "Train tickets", "transport")
	create(f.dave.ID, other.ID, "Pizza on the slopes", "food")

	list, err := f.ledger.ListGroupExpenses(f.ctx, f.carol.ID, f.group.ID, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = f.ledger.ListGroupExpenses(f.ctx, f.dave.ID, f.group.ID, 0)
	require.ErrorIs(t, err, ledger.ErrPermissionDenied)

	found, err := f.ledger.SearchExpenses(f.ctx, f.alice.ID, ledger.SearchQuery{Text: "pizza"})
	require.NoError(t, err)
	assert.Len(t, found, 2, "alice sees pizza in both of her groups")

	found, err = f.ledger.SearchExpenses(f.ctx, f.carol.ID, ledger.SearchQuery{Text: "pizza"})
	require.NoError(t, err)
	assert.Len(t, found, 1, "carol is not in the ski trip")

	found, err = f.ledger.SearchExpenses(f.ctx, f.bob.ID, ledger.SearchQuery{Category: "transport", GroupID: f.group.ID})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Train tickets", found[0].Description)

	_, err = f.ledger.SearchExpenses(f.ctx, f.bob.ID, ledger.SearchQuery{Category: "nope"})
	require.ErrorIs(t, err, ledger.ErrInvalidArgument)
}
