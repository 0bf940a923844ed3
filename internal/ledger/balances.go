package ledger

import (
	"context"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// GroupBalanceView is every member's balance plus the payments that would
// settle them.
type GroupBalanceView struct {
	Balances []calculator.MemberBalance
	Debts    []calculator.DebtEdge
	// SettlementsApplied reports whether confirmed settlements were
	// subtracted from Balances.
	SettlementsApplied bool
}

// GetBalance returns the actor's balance in one group, or across every
// group when groupID is empty.
func (l *Ledger) GetBalance(ctx context.Context, actor, groupID string) (calculator.MemberBalance, error) {
	filter := storage.ExpenseFilter{UserID: actor}
	if groupID != "" {
		if _, err := l.memberGroup(ctx, l.store, groupID, actor); err != nil {
			return calculator.MemberBalance{}, err
		}
		filter = storage.ExpenseFilter{GroupID: groupID}
	}

	expenses, err := l.store.ListExpenses(ctx, filter)
	if err != nil {
		return calculator.MemberBalance{}, err
	}
	return calculator.Balance(actor, expenses), nil
}

// GetGroupBalances computes balances for every member of a group. Settlements
// are ignored unless includeSettlements is set, in which case confirmed
// settlements are subtracted.
func (l *Ledger) GetGroupBalances(ctx context.Context, actor, groupID string, includeSettlements bool) (*GroupBalanceView, error) {
	group, err := l.memberGroup(ctx, l.store, groupID, actor)
	if err != nil {
		return nil, err
	}

	expenses, err := l.store.ListExpenses(ctx, storage.ExpenseFilter{GroupID: groupID})
	if err != nil {
		return nil, err
	}
	balances := calculator.GroupBalances(group.Members, expenses)

	if includeSettlements {
		settlements, err := l.store.ListSettlements(ctx, storage.SettlementFilter{
			GroupID: groupID,
			Status:  models.SettlementConfirmed,
		})
		if err != nil {
			return nil, err
		}
		balances = calculator.ApplySettlements(balances, settlements)
	}

	return &GroupBalanceView{
		Balances:           balances,
		Debts:              calculator.SimplifyDebts(balances),
		SettlementsApplied: includeSettlements,
	}, nil
}
