package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// SettlementInput describes a claimed payment from FromUserID to ToUserID.
type SettlementInput struct {
	GroupID string
	// FromUserID defaults to the actor and must equal it.
	FromUserID string
	ToUserID   string
	Amount     decimal.Decimal
	Note       string
}

// CreateSettlement records a pending settlement. Only the payer can claim
// a payment; the amount is not checked against balances.
func (l *Ledger) CreateSettlement(ctx context.Context, actor string, in SettlementInput) (*models.Settlement, error) {
	from := in.FromUserID
	if from == "" {
		from = actor
	}
	if from != actor {
		return nil, denied("settlements can only be recorded by the paying member")
	}
	if in.ToUserID == "" {
		return nil, invalid("to_user_id is required")
	}
	if in.ToUserID == from {
		return nil, invalid("cannot settle with yourself")
	}
	amount := in.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, invalid("amount must be greater than zero")
	}

	group, err := l.memberGroup(ctx, l.store, in.GroupID, actor)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(in.ToUserID) {
		return nil, invalid("%s is not a member of the group", in.ToUserID)
	}

	settlement := &models.Settlement{
		GroupID:    group.ID,
		FromUserID: from,
		ToUserID:   in.ToUserID,
		Amount:     amount,
		Status:     models.SettlementPending,
		Note:       strings.TrimSpace(in.Note),
		CreatedAt:  l.now().Unix(),
	}
	if err := l.store.CreateSettlement(ctx, settlement); err != nil {
		return nil, translate(err)
	}

	slog.InfoContext(ctx, "Settlement created",
		"settlement_id", settlement.ID,
		"group_id", settlement.GroupID,
		"amount", amount.StringFixed(2),
	)
	l.committed(ctx, "settlement.create",
		events.New(events.SettlementCreated, settlement.GroupID, settlement.ID, actor).WithAmount(amount.StringFixed(2)))
	return settlement, nil
}

// ConfirmSettlement moves a pending settlement to confirmed. Only the
// recipient may confirm, and only once.
func (l *Ledger) ConfirmSettlement(ctx context.Context, actor, settlementID string) (*models.Settlement, error) {
	settlement, err := l.store.GetSettlement(ctx, settlementID)
	if err != nil {
		return nil, translate(err)
	}
	if settlement.ToUserID != actor {
		return nil, denied("only the recipient can confirm settlement %s", settlementID)
	}
	if settlement.Status == models.SettlementConfirmed {
		return nil, ErrAlreadyConfirmed
	}

	confirmedAt := l.now().Unix()
	err = l.store.ConfirmSettlement(ctx, settlementID, confirmedAt)
	if errors.Is(err, storage.ErrConflict) {
		// Lost a race with another confirmation.
		return nil, ErrAlreadyConfirmed
	}
	if err != nil {
		return nil, translate(err)
	}
	settlement.Status = models.SettlementConfirmed
	settlement.ConfirmedAt = confirmedAt

	slog.InfoContext(ctx, "Settlement confirmed", "settlement_id", settlementID, "group_id", settlement.GroupID)
	l.committed(ctx, "settlement.confirm",
		events.New(events.SettlementConfirmed, settlement.GroupID, settlement.ID, actor).WithAmount(settlement.Amount.StringFixed(2)))
	return settlement, nil
}

// ListPendingSettlements returns pending settlements the actor must confirm.
func (l *Ledger) ListPendingSettlements(ctx context.Context, actor string) ([]*models.Settlement, error) {
	return l.store.ListSettlements(ctx, storage.SettlementFilter{
		ToUserID: actor,
		Status:   models.SettlementPending,
	})
}

// ListGroupSettlements returns every settlement in a group.
func (l *Ledger) ListGroupSettlements(ctx context.Context, actor, groupID string) ([]*models.Settlement, error) {
	if _, err := l.memberGroup(ctx, l.store, groupID, actor); err != nil {
		return nil, err
	}
	return l.store.ListSettlements(ctx, storage.SettlementFilter{GroupID: groupID})
}
