package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/api"
)

// BudgetService implements apiconnect.BudgetServiceHandler.
type BudgetService struct {
	ledger *ledger.Ledger
}

// NewBudgetService creates a BudgetService backed by l.
func NewBudgetService(l *ledger.Ledger) *BudgetService {
	return &BudgetService{ledger: l}
}

// SetBudget creates or replaces a budget and returns its current standing.
func (s *BudgetService) SetBudget(ctx context.Context, req *connect.Request[api.SetBudgetRequest]) (*connect.Response[api.SetBudgetResponse], error) {
	actor, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	view, err := s.ledger.SetBudget(ctx, actor, ledger.BudgetInput{
		GroupID:  req.Msg.GroupID,
		Category: req.Msg.Category,
		Amount:   req.Msg.Amount,
		Period:   req.Msg.Period,
	})
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&api.SetBudgetResponse{Budget: toAPIBudget(*view)}), nil
}

// ListBudgets returns the caller's budgets for a group, or those with no group.
func (s *BudgetService) ListBudgets(ctx context.Context, req *connect.Request[api.ListBudgetsRequest]) (*connect.Response[api.ListBudgetsResponse], error) {
	actor, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	views, err := s.ledger.ListBudgets(ctx, actor, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	out := make([]*api.Budget, len(views))
	for i, v := range views {
		out[i] = toAPIBudget(v)
	}
	return connect.NewResponse(&api.ListBudgetsResponse{Budgets: out}), nil
}

// DeleteBudget removes one of the caller's budgets.
func (s *BudgetService) DeleteBudget(ctx context.Context, req *connect.Request[api.DeleteBudgetRequest]) (*connect.Response[api.DeleteBudgetResponse], error) {
	actor, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.DeleteBudget(ctx, actor, req.Msg.BudgetID); err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&api.DeleteBudgetResponse{}), nil
}
