package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// GroupServiceName is the fully-qualified name of the GroupService.
const GroupServiceName = "splitledger.v1.GroupService"

const (
	GroupServiceCreateGroupProcedure      = "/splitledger.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure         = "/splitledger.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure       = "/splitledger.v1.GroupService/ListGroups"
	GroupServiceAddMemberProcedure        = "/splitledger.v1.GroupService/AddMember"
	GroupServiceGetBalanceProcedure       = "/splitledger.v1.GroupService/GetBalance"
	GroupServiceGetGroupBalancesProcedure = "/splitledger.v1.GroupService/GetGroupBalances"
)

// GroupServiceHandler manages groups, membership and balances.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	GetBalance(context.Context, *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(GroupServiceCreateGroupProcedure, connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...))
	mux.Handle(GroupServiceGetGroupProcedure, connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...))
	mux.Handle(GroupServiceListGroupsProcedure, connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...))
	mux.Handle(GroupServiceAddMemberProcedure, connect.NewUnaryHandler(GroupServiceAddMemberProcedure, svc.AddMember, opts...))
	mux.Handle(GroupServiceGetBalanceProcedure, connect.NewUnaryHandler(GroupServiceGetBalanceProcedure, svc.GetBalance, opts...))
	mux.Handle(GroupServiceGetGroupBalancesProcedure, connect.NewUnaryHandler(GroupServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts...))
	return "/" + GroupServiceName + "/", mux
}

// GroupServiceClient is a client for the GroupService.
type GroupServiceClient interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	GetBalance(context.Context, *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
}

// NewGroupServiceClient constructs a client for the GroupService at baseURL.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &groupServiceClient{
		createGroup:      connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		getGroup:         connect.NewClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		listGroups:       connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
		addMember:        connect.NewClient[api.AddMemberRequest, api.AddMemberResponse](httpClient, baseURL+GroupServiceAddMemberProcedure, opts...),
		getBalance:       connect.NewClient[api.GetBalanceRequest, api.GetBalanceResponse](httpClient, baseURL+GroupServiceGetBalanceProcedure, opts...),
		getGroupBalances: connect.NewClient[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse](httpClient, baseURL+GroupServiceGetGroupBalancesProcedure, opts...),
	}
}

type groupServiceClient struct {
	createGroup      *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	getGroup         *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	listGroups       *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	addMember        *connect.Client[api.AddMemberRequest, api.AddMemberResponse]
	getBalance       *connect.Client[api.GetBalanceRequest, api.GetBalanceResponse]
	getGroupBalances *connect.Client[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *groupServiceClient) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetBalance(ctx context.Context, req *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error) {
	return c.getBalance.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}
