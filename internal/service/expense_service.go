package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/api"
)

// ExpenseService implements apiconnect.ExpenseServiceHandler.
type ExpenseService struct {
	ledger *ledger.Ledger
}

// NewExpenseService creates an ExpenseService over l.
func NewExpenseService(l *ledger.Ledger) *ExpenseService {
	return &ExpenseService{ledger: l}
}

// PreviewSplit computes shares without saving anything.
func (s *ExpenseService) PreviewSplit(ctx context.Context, req *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error) {
	actor, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	preview, err := s.ledger.PreviewSplit(ctx, actor, ledger.ExpenseInput{
		GroupID:      req.Msg.GroupID,
		Amount:       req.Msg.Amount,
		Participants: req.Msg.Participants,
		Policy:       toPolicy(req.Msg.Policy),
	})
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(toAPIPreview(preview)), nil
}

// CreateExpense records an expense and its splits.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	actor, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "CreateExpense request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount.String(),
		"participants_count", len(req.Msg.Participants),
	)

	date, err := parseDate("date", req.Msg.Date)
	if err != nil {
		return nil, err
	}

	expense, err := s.ledger.CreateExpense(ctx, actor, ledger.ExpenseInput{
		GroupID:      req.Msg.GroupID,
		PayerID:      req.Msg.PayerID,
		Amount:       req.Msg.Amount,
		Description:  req.Msg.Description,
		Category:     req.Msg.Category,
		Date:         date,
		Participants: req.Msg.Participants,
		Policy:       toPolicy(req.Msg.Policy),
		Receipt:      toReceipt(req.Msg.Receipt),
	})
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// GetExpense returns one expense with its items and splits.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	actor, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	expense, err := s.ledger.GetExpense(ctx, actor, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&api.GetExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// UpdateExpense edits amount, description or category. Payer only.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	actor, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	expense, err := s.ledger.UpdateExpense(ctx, actor, req.Msg.ExpenseID, ledger.ExpenseUpdate{
		Amount:      req.Msg.Amount,
		Description: req.Msg.Description,
		Category:    req.Msg.Category,
	})
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// DeleteExpense removes an expense. Payer only.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	actor, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.DeleteExpense(ctx, actor, req.Msg.ExpenseID); err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// ListGroupExpenses returns a group's expenses, newest first.
func (s *ExpenseService) ListGroupExpenses(ctx context.Context, req *connect.Request[api.ListGroupExpensesRequest]) (*connect.Response[api.ListGroupExpensesResponse], error) {
	actor, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	expenses, err := s.ledger.ListGroupExpenses(ctx, actor, req.Msg.GroupID, req.Msg.Limit)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&api.ListGroupExpensesResponse{Expenses: toAPIExpenses(expenses)}), nil
}

// SearchExpenses matches description text and category.
func (s *ExpenseService) SearchExpenses(ctx context.Context, req *connect.Request[api.SearchExpensesRequest]) (*connect.Response[api.SearchExpensesResponse], error) {
	actor, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	expenses, err := s.ledger.SearchExpenses(ctx, actor, ledger.SearchQuery{
		GroupID:  req.Msg.GroupID,
		Text:     req.Msg.Query,
		Category: req.Msg.Category,
		Limit:    req.Msg.Limit,
	})
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&api.SearchExpensesResponse{Expenses: toAPIExpenses(expenses)}), nil
}
