package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/api"
)

// SettlementService implements apiconnect.SettlementServiceHandler.
type SettlementService struct {
	ledger *ledger.Ledger
}

// NewSettlementService creates a SettlementService backed by l.
func NewSettlementService(l *ledger.Ledger) *SettlementService {
	return &SettlementService{ledger: l}
}

// CreateSettlement records that the caller paid another member.
func (s *SettlementService) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	actor, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	settlement, err := s.ledger.CreateSettlement(ctx, actor, ledger.SettlementInput{
		GroupID:  req.Msg.GroupID,
		ToUserID: req.Msg.ToUserID,
		Amount:   req.Msg.Amount,
		Note:     req.Msg.Note,
	})
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&api.CreateSettlementResponse{Settlement: toAPISettlement(settlement)}), nil
}

// ConfirmSettlement acknowledges receipt. Recipient only, once.
func (s *SettlementService) ConfirmSettlement(ctx context.Context, req *connect.Request[api.ConfirmSettlementRequest]) (*connect.Response[api.ConfirmSettlementResponse], error) {
	actor, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	settlement, err := s.ledger.ConfirmSettlement(ctx, actor, req.Msg.SettlementID)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&api.ConfirmSettlementResponse{Settlement: toAPISettlement(settlement)}), nil
}

// ListPendingSettlements returns settlements waiting on the caller.
func (s *SettlementService) ListPendingSettlements(ctx context.Context, _ *connect.Request[api.ListPendingSettlementsRequest]) (*connect.Response[api.ListPendingSettlementsResponse], error) {
	actor, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	settlements, err := s.ledger.ListPendingSettlements(ctx, actor)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&api.ListPendingSettlementsResponse{Settlements: toAPISettlements(settlements)}), nil
}

// ListGroupSettlements returns the settlements recorded in a group.
func (s *SettlementService) ListGroupSettlements(ctx context.Context, req *connect.Request[api.ListGroupSettlementsRequest]) (*connect.Response[api.ListGroupSettlementsResponse], error) {
	actor, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	settlements, err := s.ledger.ListGroupSettlements(ctx, actor, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&api.ListGroupSettlementsResponse{Settlements: toAPISettlements(settlements)}), nil
}
