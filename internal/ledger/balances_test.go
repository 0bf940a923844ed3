package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
)

func balanceOf(t *testing.T, balances []calculator.MemberBalance, userID string) calculator.MemberBalance {
	t.Helper()
	for _, b := range balances {
		if b.UserID == userID {
			return b
		}
	}
	t.Fatalf("no balance for %s", userID)
	return calculator.MemberBalance{}
}

func TestGroupBalances(t *testing.T) {
	f := newFixture(t)

	// alice pays 90 for three, bob pays 30 for bob and carol.
	_, err := f.ledger.CreateExpense(f.ctx, f.alice.ID, ledger.ExpenseInput{
		GroupID: f.group.ID, Amount: dec("90"), Description: "Rent share",
	})
	require.NoError(t, err)
	_, err = f.ledger.CreateExpense(f.ctx, f.bob.ID, ledger.ExpenseInput{
		GroupID: f.group.ID, Amount: dec("30"), Description: "Cab",
		Participants: []string{f.bob.ID, f.carol.ID},
	})
	require.NoError(t, err)

	view, err := f.ledger.GetGroupBalances(f.ctx, f.carol.ID, f.group.ID, false)
	require.NoError(t, err)
	assert.False(t, view.SettlementsApplied)
	require.Len(t, view.Balances, 3)

	sum := decimal.Zero
	for _, b := range view.Balances {
		sum = sum.Add(b.Net)
	}
	assert.True(t, sum.IsZero(), "nets must sum to zero, got %s", sum)

	requireAmount(t, "60", balanceOf(t, view.Balances, f.alice.ID).Net)
	requireAmount(t, "-15", balanceOf(t, view.Balances, f.bob.ID).Net)
	requireAmount(t, "-45", balanceOf(t, view.Balances, f.carol.ID).Net)
	require.NotEmpty(t, view.Debts)

	_, err = f.ledger.GetGroupBalances(f.ctx, f.dave.ID, f.group.ID, false)
	require.ErrorIs(t, err, ledger.ErrPermissionDenied)

	t.Run("confirmed settlements only when requested", func(t *testing.T) {
		s, err := f.ledger.CreateSettlement(f.ctx, f.carol.ID, ledger.SettlementInput{
			GroupID: f.group.ID, ToUserID: f.alice.ID, Amount: dec("45"),
		})
		require.NoError(t, err)

		view, err := f.ledger.GetGroupBalances(f.ctx, f.alice.ID, f.group.ID, true)
		require.NoError(t, err)
		requireAmount(t, "-45", balanceOf(t, view.Balances, f.carol.ID).Net, "pending settlements are ignored")

		_, err = f.ledger.ConfirmSettlement(f.ctx, f.alice.ID, s.ID)
		require.NoError(t, err)

		view, err = f.ledger.GetGroupBalances(f.ctx, f.alice.ID, f.group.ID, true)
		require.NoError(t, err)
		assert.True(t, view.SettlementsApplied)
		requireAmount(t, "0", balanceOf(t, view.Balances, f.carol.ID).Net)
		requireAmount(t, "15", balanceOf(t, view.Balances, f.alice.ID).Net)

		view, err = f.ledger.GetGroupBalances(f.ctx, f.alice.ID, f.group.ID, false)
		require.NoError(t, err)
		requireAmount(t, "-45", balanceOf(t, view.Balances, f.carol.ID).Net)
	})
}

func TestGetBalance(t *testing.T) {
	f := newFixture(t)

	other, err := f.ledger.CreateGroup(f.ctx, f.bob.ID, ledger.GroupInput{Name: "Book club", MemberIDs: []string{f.alice.ID}})
	require.NoError(t, err)

	_, err = f.ledger.CreateExpense(f.ctx, f.alice.ID, ledger.ExpenseInput{
		GroupID: f.group.ID, Amount: dec("30"), Description: "Cleaning",
	})
	require.NoError(t, err)
	_, err = f.ledger.CreateExpense(f.ctx, f.bob.ID, ledger.ExpenseInput{
		GroupID: other.ID, Amount: dec("40"), Description: "Books",
	})
	require.NoError(t, err)

	inGroup, err := f.ledger.GetBalance(f.ctx, f.alice.ID, f.group.ID)
	require.NoError(t, err)
	requireAmount(t, "30", inGroup.TotalPaid)
	requireAmount(t, "10", inGroup.TotalOwed)
	requireAmount(t, "20", inGroup.Net)

	overall, err := f.ledger.GetBalance(f.ctx, f.alice.ID, "")
	require.NoError(t, err)
	requireAmount(t, "30", overall.TotalPaid)
	requireAmount(t, "30", overall.TotalOwed)
	requireAmount(t, "0", overall.Net)

	_, err = f.ledger.GetBalance(f.ctx, f.carol.ID, other.ID)
	require.ErrorIs(t, err, ledger.ErrPermissionDenied)
}
