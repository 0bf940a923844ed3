package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/api"
)

// RecurringService implements apiconnect.RecurringServiceHandler.
type RecurringService struct {
	ledger *ledger.Ledger
}

// NewRecurringService creates a RecurringService backed by l.
func NewRecurringService(l *ledger.Ledger) *RecurringService {
	return &RecurringService{ledger: l}
}

// CreateRecurring stores a monthly template paid by the caller.
func (s *RecurringService) CreateRecurring(ctx context.Context, req *connect.Request[api.CreateRecurringRequest]) (*connect.Response[api.CreateRecurringResponse], error) {
	actor, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	start, err := parseDate("start_date", req.Msg.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("end_date", req.Msg.EndDate)
	if err != nil {
		return nil, err
	}

	r, err := s.ledger.CreateRecurring(ctx, actor, ledger.RecurringInput{
		GroupID:     req.Msg.GroupID,
		Amount:      req.Msg.Amount,
		Description: req.Msg.Description,
		Category:    req.Msg.Category,
		Frequency:   req.Msg.Frequency,
		DayOfMonth:  req.Msg.DayOfMonth,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&api.CreateRecurringResponse{Recurring: toAPIRecurring(r)}), nil
}

// ListRecurring returns the recurring templates of a group.
func (s *RecurringService) ListRecurring(ctx context.Context, req *connect.Request[api.ListRecurringRequest]) (*connect.Response[api.ListRecurringResponse], error) {
	actor, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	templates, err := s.ledger.ListRecurring(ctx, actor, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	out := make([]*api.Recurring, len(templates))
	for i, r := range templates {
		out[i] = toAPIRecurring(r)
	}
	return connect.NewResponse(&api.ListRecurringResponse{Recurring: out}), nil
}

// ToggleRecurring pauses or resumes a template. Payer only.
func (s *RecurringService) ToggleRecurring(ctx context.Context, req *connect.Request[api.ToggleRecurringRequest]) (*connect.Response[api.ToggleRecurringResponse], error) {
	actor, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	r, err := s.ledger.ToggleRecurring(ctx, actor, req.Msg.RecurringID)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&api.ToggleRecurringResponse{Recurring: toAPIRecurring(r)}), nil
}

// DeleteRecurring removes a template. Payer only.
func (s *RecurringService) DeleteRecurring(ctx context.Context, req *connect.Request[api.DeleteRecurringRequest]) (*connect.Response[api.DeleteRecurringResponse], error) {
	actor, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.DeleteRecurring(ctx, actor, req.Msg.RecurringID); err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&api.DeleteRecurringResponse{}), nil
}
