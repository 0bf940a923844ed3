package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

// GroupService implements apiconnect.GroupServiceHandler.
type GroupService struct {
	ledger *ledger.Ledger
}

// NewGroupService creates a GroupService over l.
func NewGroupService(l *ledger.Ledger) *GroupService {
	return &GroupService{ledger: l}
}

// CreateGroup creates a group with the caller and the listed members.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	actor, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberEmails),
	)

	group, err := s.ledger.CreateGroup(ctx, actor, ledger.GroupInput{
		Name:         req.Msg.Name,
		Description:  req.Msg.Description,
		MemberEmails: req.Msg.MemberEmails,
	})
	if err != nil {
		return nil, toConnectError(ctx, err)
	}

	apiGroup, err := s.withMembers(ctx, group)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.CreateGroupResponse{Group: apiGroup}), nil
}

// GetGroup returns a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	actor, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	group, err := s.ledger.GetGroup(ctx, actor, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}

	apiGroup, err := s.withMembers(ctx, group)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetGroupResponse{Group: apiGroup}), nil
}

// ListGroups returns the caller's groups.
func (s *GroupService) ListGroups(ctx context.Context, _ *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	actor, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.ledger.ListGroups(ctx, actor)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}

	var ids []string
	for _, g := range groups {
		ids = append(ids, g.Members...)
	}
	users, err := s.ledger.Users(ctx, ids)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}

	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		out[i] = toAPIGroup(g, users)
	}
	slog.InfoContext(ctx, "ListGroups successful", "count", len(out))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// AddMember adds a registered user to a group by email.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	actor, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	group, err := s.ledger.AddMember(ctx, actor, req.Msg.GroupID, req.Msg.Email)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}

	apiGroup, err := s.withMembers(ctx, group)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.AddMemberResponse{Group: apiGroup}), nil
}

// GetBalance returns the caller's balance in one group or across all of them.
func (s *GroupService) GetBalance(ctx context.Context, req *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error) {
	actor, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	balance, err := s.ledger.GetBalance(ctx, actor, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return connect.NewResponse(&api.GetBalanceResponse{Balance: toAPIBalance(balance)}), nil
}

// GetGroupBalances returns every member's balance and the simplified debts.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	actor, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "GetGroupBalances request received",
		"group_id", req.Msg.GroupID,
		"include_settlements", req.Msg.IncludeSettlements,
	)

	view, err := s.ledger.GetGroupBalances(ctx, actor, req.Msg.GroupID, req.Msg.IncludeSettlements)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}

	resp := &api.GetGroupBalancesResponse{
		Balances:           make([]*api.Balance, len(view.Balances)),
		Debts:              make([]*api.Debt, len(view.Debts)),
		SettlementsApplied: view.SettlementsApplied,
	}
	for i, b := range view.Balances {
		resp.Balances[i] = toAPIBalance(b)
	}
	for i, d := range view.Debts {
		resp.Debts[i] = &api.Debt{From: d.From, To: d.To, Amount: d.Amount}
	}
	return connect.NewResponse(resp), nil
}

func (s *GroupService) withMembers(ctx context.Context, g *models.Group) (*api.Group, error) {
	users, err := s.ledger.Users(ctx, g.Members)
	if err != nil {
		return nil, toConnectError(ctx, err)
	}
	return toAPIGroup(g, users), nil
}
