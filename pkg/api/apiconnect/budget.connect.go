package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// BudgetServiceName is the fully-qualified name of the BudgetService.
const BudgetServiceName = "splitledger.v1.BudgetService"

const (
	BudgetServiceSetBudgetProcedure    = "/splitledger.v1.BudgetService/SetBudget"
	BudgetServiceListBudgetsProcedure  = "/splitledger.v1.BudgetService/ListBudgets"
	BudgetServiceDeleteBudgetProcedure = "/splitledger.v1.BudgetService/DeleteBudget"
)

// BudgetServiceHandler manages per-category spending ceilings.
type BudgetServiceHandler interface {
	SetBudget(context.Context, *connect.Request[api.SetBudgetRequest]) (*connect.Response[api.SetBudgetResponse], error)
	ListBudgets(context.Context, *connect.Request[api.ListBudgetsRequest]) (*connect.Response[api.ListBudgetsResponse], error)
	DeleteBudget(context.Context, *connect.Request[api.DeleteBudgetRequest]) (*connect.Response[api.DeleteBudgetResponse], error)
}

// NewBudgetServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewBudgetServiceHandler(svc BudgetServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(BudgetServiceSetBudgetProcedure, connect.NewUnaryHandler(BudgetServiceSetBudgetProcedure, svc.SetBudget, opts...))
	mux.Handle(BudgetServiceListBudgetsProcedure, connect.NewUnaryHandler(BudgetServiceListBudgetsProcedure, svc.ListBudgets, opts...))
	mux.Handle(BudgetServiceDeleteBudgetProcedure, connect.NewUnaryHandler(BudgetServiceDeleteBudgetProcedure, svc.DeleteBudget, opts...))
	return "/" + BudgetServiceName + "/", mux
}

// BudgetServiceClient is a client for the BudgetService.
type BudgetServiceClient interface {
	SetBudget(context.Context, *connect.Request[api.SetBudgetRequest]) (*connect.Response[api.SetBudgetResponse], error)
	ListBudgets(context.Context, *connect.Request[api.ListBudgetsRequest]) (*connect.Response[api.ListBudgetsResponse], error)
	DeleteBudget(context.Context, *connect.Request[api.DeleteBudgetRequest]) (*connect.Response[api.DeleteBudgetResponse], error)
}

// NewBudgetServiceClient constructs a client for the BudgetService at baseURL.
func NewBudgetServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) BudgetServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &budgetServiceClient{
		setBudget:    connect.NewClient[api.SetBudgetRequest, api.SetBudgetResponse](httpClient, baseURL+BudgetServiceSetBudgetProcedure, opts...),
		listBudgets:  connect.NewClient[api.ListBudgetsRequest, api.ListBudgetsResponse](httpClient, baseURL+BudgetServiceListBudgetsProcedure, opts...),
		deleteBudget: connect.NewClient[api.DeleteBudgetRequest, api.DeleteBudgetResponse](httpClient, baseURL+BudgetServiceDeleteBudgetProcedure, opts...),
	}
}

type budgetServiceClient struct {
	setBudget    *connect.Client[api.SetBudgetRequest, api.SetBudgetResponse]
	listBudgets  *connect.Client[api.ListBudgetsRequest, api.ListBudgetsResponse]
	deleteBudget *connect.Client[api.DeleteBudgetRequest, api.DeleteBudgetResponse]
}

func (c *budgetServiceClient) SetBudget(ctx context.Context, req *connect.Request[api.SetBudgetRequest]) (*connect.Response[api.SetBudgetResponse], error) {
	return c.setBudget.CallUnary(ctx, req)
}

func (c *budgetServiceClient) ListBudgets(ctx context.Context, req *connect.Request[api.ListBudgetsRequest]) (*connect.Response[api.ListBudgetsResponse], error) {
	return c.listBudgets.CallUnary(ctx, req)
}

func (c *budgetServiceClient) DeleteBudget(ctx context.Context, req *connect.Request[api.DeleteBudgetRequest]) (*connect.Response[api.DeleteBudgetResponse], error) {
	return c.deleteBudget.CallUnary(ctx, req)
}
