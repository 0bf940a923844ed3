package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

const (
	whoamiProcedure = "/test.v1.EchoService/Whoami"
	publicProcedure = "/test.v1.EchoService/Public"
)

type whoami struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func setupEchoServer(t *testing.T, jwt *auth.JWTManager) (*connect.Client[struct{}, whoami], *connect.Client[struct{}, whoami]) {
	t.Helper()

	handle := func(ctx context.Context, _ *connect.Request[struct{}]) (*connect.Response[whoami], error) {
		return connect.NewResponse(&whoami{UserID: GetUserID(ctx), Email: GetEmail(ctx)}), nil
	}
	opts := []connect.HandlerOption{
		connect.WithCodec(apiconnect.Codec{}),
		connect.WithInterceptors(RequireAuth(jwt, publicProcedure), LoggingInterceptor(metrics.New())),
	}

	mux := http.NewServeMux()
	mux.Handle(whoamiProcedure, connect.NewUnaryHandler(whoamiProcedure, handle, opts...))
	mux.Handle(publicProcedure, connect.NewUnaryHandler(publicProcedure, handle, opts...))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	codec := connect.WithCodec(apiconnect.Codec{})
	return connect.NewClient[struct{}, whoami](http.DefaultClient, server.URL+whoamiProcedure, codec),
		connect.NewClient[struct{}, whoami](http.DefaultClient, server.URL+publicProcedure, codec)
}

func TestRequireAuth(t *testing.T) {
	jwt := auth.NewJWTManager("secret", time.Hour)
	token, err := jwt.Generate(&models.User{ID: "user-1", Email: "one@example.com"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	private, public := setupEchoServer(t, jwt)

	tests := []struct {
		name   string
		header string
		code   connect.Code
	}{
		{"missing header", "", connect.CodeUnauthenticated},
		{"wrong scheme", "Basic " + token, connect.CodeUnauthenticated},
		{"garbage token", "Bearer not-a-jwt", connect.CodeUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := connect.NewRequest(&struct{}{})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}
			_, err := private.CallUnary(context.Background(), req)
			if connect.CodeOf(err) != tt.code {
				t.Errorf("expected %v, got %v", tt.code, err)
			}
		})
	}

	req := connect.NewRequest(&struct{}{})
	req.Header().Set("Authorization", "Bearer "+token)
	resp, err := private.CallUnary(context.Background(), req)
	if err != nil {
		t.Fatalf("authenticated call failed: %v", err)
	}
	if resp.Msg.UserID != "user-1" || resp.Msg.Email != "one@example.com" {
		t.Errorf("unexpected caller: %+v", resp.Msg)
	}

	resp, err = public.CallUnary(context.Background(), connect.NewRequest(&struct{}{}))
	if err != nil {
		t.Fatalf("public call failed: %v", err)
	}
	if resp.Msg.UserID != "" {
		t.Errorf("public call should be anonymous, got %q", resp.Msg.UserID)
	}
}

func TestWebSocketAuth(t *testing.T) {
	jwt := auth.NewJWTManager("secret", time.Hour)
	token, err := jwt.Generate(&models.User{ID: "user-2", Email: "two@example.com"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/ws/groups/g1?token="+token, nil)
	claims, err := WebSocketAuth(jwt, r)
	if err != nil {
		t.Fatalf("query token rejected: %v", err)
	}
	if claims.UserID != "user-2" {
		t.Errorf("expected user-2, got %s", claims.UserID)
	}

	r = httptest.NewRequest(http.MethodGet, "/ws/groups/g1", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	if _, err := WebSocketAuth(jwt, r); err != nil {
		t.Errorf("header token rejected: %v", err)
	}

	r = httptest.NewRequest(http.MethodGet, "/ws/groups/g1", nil)
	if _, err := WebSocketAuth(jwt, r); !errors.Is(err, auth.ErrMissingToken) {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}

	r = httptest.NewRequest(http.MethodGet, "/ws/groups/g1?token="+strings.Repeat("x", 10), nil)
	if _, err := WebSocketAuth(jwt, r); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
