package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// AuthServiceName is the fully-qualified name of the AuthService.
const AuthServiceName = "splitledger.v1.AuthService"

const (
	AuthServiceRegisterProcedure       = "/splitledger.v1.AuthService/Register"
	AuthServiceLoginProcedure          = "/splitledger.v1.AuthService/Login"
	AuthServiceGetCurrentUserProcedure = "/splitledger.v1.AuthService/GetCurrentUser"
)

// AuthServiceHandler registers accounts and issues bearer tokens.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(AuthServiceRegisterProcedure, connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opts...))
	mux.Handle(AuthServiceLoginProcedure, connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...))
	mux.Handle(AuthServiceGetCurrentUserProcedure, connect.NewUnaryHandler(AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts...))
	return "/" + AuthServiceName + "/", mux
}

// AuthServiceClient is a client for the AuthService.
type AuthServiceClient interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
}

// NewAuthServiceClient constructs a client for the AuthService at baseURL.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &authServiceClient{
		register:       connect.NewClient[api.RegisterRequest, api.RegisterResponse](httpClient, baseURL+AuthServiceRegisterProcedure, opts...),
		login:          connect.NewClient[api.LoginRequest, api.LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
		getCurrentUser: connect.NewClient[api.GetCurrentUserRequest, api.GetCurrentUserResponse](httpClient, baseURL+AuthServiceGetCurrentUserProcedure, opts...),
	}
}

type authServiceClient struct {
	register       *connect.Client[api.RegisterRequest, api.RegisterResponse]
	login          *connect.Client[api.LoginRequest, api.LoginResponse]
	getCurrentUser *connect.Client[api.GetCurrentUserRequest, api.GetCurrentUserResponse]
}

func (c *authServiceClient) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *authServiceClient) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *authServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}
