package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// SettlementServiceName is the fully-qualified name of the SettlementService.
const SettlementServiceName = "splitledger.v1.SettlementService"

const (
	SettlementServiceCreateSettlementProcedure       = "/splitledger.v1.SettlementService/CreateSettlement"
	SettlementServiceConfirmSettlementProcedure      = "/splitledger.v1.SettlementService/ConfirmSettlement"
	SettlementServiceListPendingSettlementsProcedure = "/splitledger.v1.SettlementService/ListPendingSettlements"
	SettlementServiceListGroupSettlementsProcedure   = "/splitledger.v1.SettlementService/ListGroupSettlements"
)

// SettlementServiceHandler records and confirms payments between members.
type SettlementServiceHandler interface {
	CreateSettlement(context.Context, *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error)
	ConfirmSettlement(context.Context, *connect.Request[api.ConfirmSettlementRequest]) (*connect.Response[api.ConfirmSettlementResponse], error)
	ListPendingSettlements(context.Context, *connect.Request[api.ListPendingSettlementsRequest]) (*connect.Response[api.ListPendingSettlementsResponse], error)
	ListGroupSettlements(context.Context, *connect.Request[api.ListGroupSettlementsRequest]) (*connect.Response[api.ListGroupSettlementsResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(SettlementServiceCreateSettlementProcedure, connect.NewUnaryHandler(SettlementServiceCreateSettlementProcedure, svc.CreateSettlement, opts...))
	mux.Handle(SettlementServiceConfirmSettlementProcedure, connect.NewUnaryHandler(SettlementServiceConfirmSettlementProcedure, svc.ConfirmSettlement, opts...))
	mux.Handle(SettlementServiceListPendingSettlementsProcedure, connect.NewUnaryHandler(SettlementServiceListPendingSettlementsProcedure, svc.ListPendingSettlements, opts...))
	mux.Handle(SettlementServiceListGroupSettlementsProcedure, connect.NewUnaryHandler(SettlementServiceListGroupSettlementsProcedure, svc.ListGroupSettlements, opts...))
	return "/" + SettlementServiceName + "/", mux
}

// SettlementServiceClient is a client for the SettlementService.
type SettlementServiceClient interface {
	CreateSettlement(context.Context, *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error)
	ConfirmSettlement(context.Context, *connect.Request[api.ConfirmSettlementRequest]) (*connect.Response[api.ConfirmSettlementResponse], error)
	ListPendingSettlements(context.Context, *connect.Request[api.ListPendingSettlementsRequest]) (*connect.Response[api.ListPendingSettlementsResponse], error)
	ListGroupSettlements(context.Context, *connect.Request[api.ListGroupSettlementsRequest]) (*connect.Response[api.ListGroupSettlementsResponse], error)
}

// NewSettlementServiceClient constructs a client for the SettlementService at baseURL.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SettlementServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &settlementServiceClient{
		createSettlement:       connect.NewClient[api.CreateSettlementRequest, api.CreateSettlementResponse](httpClient, baseURL+SettlementServiceCreateSettlementProcedure, opts...),
		confirmSettlement:      connect.NewClient[api.ConfirmSettlementRequest, api.ConfirmSettlementResponse](httpClient, baseURL+SettlementServiceConfirmSettlementProcedure, opts...),
		listPendingSettlements: connect.NewClient[api.ListPendingSettlementsRequest, api.ListPendingSettlementsResponse](httpClient, baseURL+SettlementServiceListPendingSettlementsProcedure, opts...),
		listGroupSettlements:   connect.NewClient[api.ListGroupSettlementsRequest, api.ListGroupSettlementsResponse](httpClient, baseURL+SettlementServiceListGroupSettlementsProcedure, opts...),
	}
}

type settlementServiceClient struct {
	createSettlement       *connect.Client[api.CreateSettlementRequest, api.CreateSettlementResponse]
	confirmSettlement      *connect.Client[api.ConfirmSettlementRequest, api.ConfirmSettlementResponse]
	listPendingSettlements *connect.Client[api.ListPendingSettlementsRequest, api.ListPendingSettlementsResponse]
	listGroupSettlements   *connect.Client[api.ListGroupSettlementsRequest, api.ListGroupSettlementsResponse]
}

func (c *settlementServiceClient) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	return c.createSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) ConfirmSettlement(ctx context.Context, req *connect.Request[api.ConfirmSettlementRequest]) (*connect.Response[api.ConfirmSettlementResponse], error) {
	return c.confirmSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) ListPendingSettlements(ctx context.Context, req *connect.Request[api.ListPendingSettlementsRequest]) (*connect.Response[api.ListPendingSettlementsResponse], error) {
	return c.listPendingSettlements.CallUnary(ctx, req)
}

func (c *settlementServiceClient) ListGroupSettlements(ctx context.Context, req *connect.Request[api.ListGroupSettlementsRequest]) (*connect.Response[api.ListGroupSettlementsResponse], error) {
	return c.listGroupSettlements.CallUnary(ctx, req)
}
