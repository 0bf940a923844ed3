package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// ExpenseServiceName is the fully-qualified name of the ExpenseService.
const ExpenseServiceName = "splitledger.v1.ExpenseService"

const (
	ExpenseServicePreviewSplitProcedure      = "/splitledger.v1.ExpenseService/PreviewSplit"
	ExpenseServiceCreateExpenseProcedure     = "/splitledger.v1.ExpenseService/CreateExpense"
	ExpenseServiceGetExpenseProcedure        = "/splitledger.v1.ExpenseService/GetExpense"
	ExpenseServiceUpdateExpenseProcedure     = "/splitledger.v1.ExpenseService/UpdateExpense"
	ExpenseServiceDeleteExpenseProcedure     = "/splitledger.v1.ExpenseService/DeleteExpense"
	ExpenseServiceListGroupExpensesProcedure = "/splitledger.v1.ExpenseService/ListGroupExpenses"
	ExpenseServiceSearchExpensesProcedure    = "/splitledger.v1.ExpenseService/SearchExpenses"
)

// ExpenseServiceHandler records and queries shared expenses.
type ExpenseServiceHandler interface {
	PreviewSplit(context.Context, *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error)
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	ListGroupExpenses(context.Context, *connect.Request[api.ListGroupExpensesRequest]) (*connect.Response[api.ListGroupExpensesResponse], error)
	SearchExpenses(context.Context, *connect.Request[api.SearchExpensesRequest]) (*connect.Response[api.SearchExpensesResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(ExpenseServicePreviewSplitProcedure, connect.NewUnaryHandler(ExpenseServicePreviewSplitProcedure, svc.PreviewSplit, opts...))
	mux.Handle(ExpenseServiceCreateExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts...))
	mux.Handle(ExpenseServiceGetExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceGetExpenseProcedure, svc.GetExpense, opts...))
	mux.Handle(ExpenseServiceUpdateExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceUpdateExpenseProcedure, svc.UpdateExpense, opts...))
	mux.Handle(ExpenseServiceDeleteExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...))
	mux.Handle(ExpenseServiceListGroupExpensesProcedure, connect.NewUnaryHandler(ExpenseServiceListGroupExpensesProcedure, svc.ListGroupExpenses, opts...))
	mux.Handle(ExpenseServiceSearchExpensesProcedure, connect.NewUnaryHandler(ExpenseServiceSearchExpensesProcedure, svc.SearchExpenses, opts...))
	return "/" + ExpenseServiceName + "/", mux
}

// ExpenseServiceClient is a client for the ExpenseService.
type ExpenseServiceClient interface {
	PreviewSplit(context.Context, *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error)
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	ListGroupExpenses(context.Context, *connect.Request[api.ListGroupExpensesRequest]) (*connect.Response[api.ListGroupExpensesResponse], error)
	SearchExpenses(context.Context, *connect.Request[api.SearchExpensesRequest]) (*connect.Response[api.SearchExpensesResponse], error)
}

// NewExpenseServiceClient constructs a client for the ExpenseService at baseURL.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ExpenseServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &expenseServiceClient{
		previewSplit:      connect.NewClient[api.PreviewSplitRequest, api.PreviewSplitResponse](httpClient, baseURL+ExpenseServicePreviewSplitProcedure, opts...),
		createExpense:     connect.NewClient[api.CreateExpenseRequest, api.CreateExpenseResponse](httpClient, baseURL+ExpenseServiceCreateExpenseProcedure, opts...),
		getExpense:        connect.NewClient[api.GetExpenseRequest, api.GetExpenseResponse](httpClient, baseURL+ExpenseServiceGetExpenseProcedure, opts...),
		updateExpense:     connect.NewClient[api.UpdateExpenseRequest, api.UpdateExpenseResponse](httpClient, baseURL+ExpenseServiceUpdateExpenseProcedure, opts...),
		deleteExpense:     connect.NewClient[api.DeleteExpenseRequest, api.DeleteExpenseResponse](httpClient, baseURL+ExpenseServiceDeleteExpenseProcedure, opts...),
		listGroupExpenses: connect.NewClient[api.ListGroupExpensesRequest, api.ListGroupExpensesResponse](httpClient, baseURL+ExpenseServiceListGroupExpensesProcedure, opts...),
		searchExpenses:    connect.NewClient[api.SearchExpensesRequest, api.SearchExpensesResponse](httpClient, baseURL+ExpenseServiceSearchExpensesProcedure, opts...),
	}
}

type expenseServiceClient struct {
	previewSplit      *connect.Client[api.PreviewSplitRequest, api.PreviewSplitResponse]
	createExpense     *connect.Client[api.CreateExpenseRequest, api.CreateExpenseResponse]
	getExpense        *connect.Client[api.GetExpenseRequest, api.GetExpenseResponse]
	updateExpense     *connect.Client[api.UpdateExpenseRequest, api.UpdateExpenseResponse]
	deleteExpense     *connect.Client[api.DeleteExpenseRequest, api.DeleteExpenseResponse]
	listGroupExpenses *connect.Client[api.ListGroupExpensesRequest, api.ListGroupExpensesResponse]
	searchExpenses    *connect.Client[api.SearchExpensesRequest, api.SearchExpensesResponse]
}

func (c *expenseServiceClient) PreviewSplit(ctx context.Context, req *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error) {
	return c.previewSplit.CallUnary(ctx, req)
}

func (c *expenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	return c.updateExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListGroupExpenses(ctx context.Context, req *connect.Request[api.ListGroupExpensesRequest]) (*connect.Response[api.ListGroupExpensesResponse], error) {
	return c.listGroupExpenses.CallUnary(ctx, req)
}

func (c *expenseServiceClient) SearchExpenses(ctx context.Context, req *connect.Request[api.SearchExpensesRequest]) (*connect.Response[api.SearchExpensesResponse], error) {
	return c.searchExpenses.CallUnary(ctx, req)
}
