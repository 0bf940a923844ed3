package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// RecurringServiceName is the fully-qualified name of the RecurringService.
const RecurringServiceName = "splitledger.v1.RecurringService"

const (
	RecurringServiceCreateRecurringProcedure = "/splitledger.v1.RecurringService/CreateRecurring"
	RecurringServiceListRecurringProcedure   = "/splitledger.v1.RecurringService/ListRecurring"
	RecurringServiceToggleRecurringProcedure = "/splitledger.v1.RecurringService/ToggleRecurring"
	RecurringServiceDeleteRecurringProcedure = "/splitledger.v1.RecurringService/DeleteRecurring"
)

// RecurringServiceHandler manages monthly expense templates.
type RecurringServiceHandler interface {
	CreateRecurring(context.Context, *connect.Request[api.CreateRecurringRequest]) (*connect.Response[api.CreateRecurringResponse], error)
	ListRecurring(context.Context, *connect.Request[api.ListRecurringRequest]) (*connect.Response[api.ListRecurringResponse], error)
	ToggleRecurring(context.Context, *connect.Request[api.ToggleRecurringRequest]) (*connect.Response[api.ToggleRecurringResponse], error)
	DeleteRecurring(context.Context, *connect.Request[api.DeleteRecurringRequest]) (*connect.Response[api.DeleteRecurringResponse], error)
}

// NewRecurringServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewRecurringServiceHandler(svc RecurringServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(RecurringServiceCreateRecurringProcedure, connect.NewUnaryHandler(RecurringServiceCreateRecurringProcedure, svc.CreateRecurring, opts...))
	mux.Handle(RecurringServiceListRecurringProcedure, connect.NewUnaryHandler(RecurringServiceListRecurringProcedure, svc.ListRecurring, opts...))
	mux.Handle(RecurringServiceToggleRecurringProcedure, connect.NewUnaryHandler(RecurringServiceToggleRecurringProcedure, svc.ToggleRecurring, opts...))
	mux.Handle(RecurringServiceDeleteRecurringProcedure, connect.NewUnaryHandler(RecurringServiceDeleteRecurringProcedure, svc.DeleteRecurring, opts...))
	return "/" + RecurringServiceName + "/", mux
}

// RecurringServiceClient is a client for the RecurringService.
type RecurringServiceClient interface {
	CreateRecurring(context.Context, *connect.Request[api.CreateRecurringRequest]) (*connect.Response[api.CreateRecurringResponse], error)
	ListRecurring(context.Context, *connect.Request[api.ListRecurringRequest]) (*connect.Response[api.ListRecurringResponse], error)
	ToggleRecurring(context.Context, *connect.Request[api.ToggleRecurringRequest]) (*connect.Response[api.ToggleRecurringResponse], error)
	DeleteRecurring(context.Context, *connect.Request[api.DeleteRecurringRequest]) (*connect.Response[api.DeleteRecurringResponse], error)
}

// NewRecurringServiceClient constructs a client for the RecurringService at baseURL.
func NewRecurringServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) RecurringServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &recurringServiceClient{
		createRecurring: connect.NewClient[api.CreateRecurringRequest, api.CreateRecurringResponse](httpClient, baseURL+RecurringServiceCreateRecurringProcedure, opts...),
		listRecurring:   connect.NewClient[api.ListRecurringRequest, api.ListRecurringResponse](httpClient, baseURL+RecurringServiceListRecurringProcedure, opts...),
		toggleRecurring: connect.NewClient[api.ToggleRecurringRequest, api.ToggleRecurringResponse](httpClient, baseURL+RecurringServiceToggleRecurringProcedure, opts...),
		deleteRecurring: connect.NewClient[api.DeleteRecurringRequest, api.DeleteRecurringResponse](httpClient, baseURL+RecurringServiceDeleteRecurringProcedure, opts...),
	}
}

type recurringServiceClient struct {
	createRecurring *connect.Client[api.CreateRecurringRequest, api.CreateRecurringResponse]
	listRecurring   *connect.Client[api.ListRecurringRequest, api.ListRecurringResponse]
	toggleRecurring *connect.Client[api.ToggleRecurringRequest, api.ToggleRecurringResponse]
	deleteRecurring *connect.Client[api.DeleteRecurringRequest, api.DeleteRecurringResponse]
}

func (c *recurringServiceClient) CreateRecurring(ctx context.Context, req *connect.Request[api.CreateRecurringRequest]) (*connect.Response[api.CreateRecurringResponse], error) {
	return c.createRecurring.CallUnary(ctx, req)
}

func (c *recurringServiceClient) ListRecurring(ctx context.Context, req *connect.Request[api.ListRecurringRequest]) (*connect.Response[api.ListRecurringResponse], error) {
	return c.listRecurring.CallUnary(ctx, req)
}

func (c *recurringServiceClient) ToggleRecurring(ctx context.Context, req *connect.Request[api.ToggleRecurringRequest]) (*connect.Response[api.ToggleRecurringResponse], error) {
	return c.toggleRecurring.CallUnary(ctx, req)
}

func (c *recurringServiceClient) DeleteRecurring(ctx context.Context, req *connect.Request[api.DeleteRecurringRequest]) (*connect.Response[api.DeleteRecurringResponse], error) {
	return c.deleteRecurring.CallUnary(ctx, req)
}
