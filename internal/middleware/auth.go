package middleware

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDKey is the context key for storing the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// EmailKey is the context key for storing the authenticated user's email.
	EmailKey contextKey = "email"
)

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// GetEmail extracts the user email from the context.
func GetEmail(ctx context.Context) string {
	email, _ := ctx.Value(EmailKey).(string)
	return email
}

// WithUser returns ctx carrying the authenticated user.
func WithUser(ctx context.Context, userID, email string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, EmailKey, email)
}

// RequireAuth validates the bearer token on every procedure except the
// public ones and stores the caller in the request context.
func RequireAuth(jwtManager *auth.JWTManager, public ...string) connect.UnaryInterceptorFunc {
	open := make(map[string]bool, len(public))
	for _, p := range public {
		open[p] = true
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if open[req.Spec().Procedure] {
				return next(ctx, req)
			}

			token, err := auth.BearerToken(req.Header().Get("Authorization"))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			claims, err := jwtManager.Validate(token)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			return next(WithUser(ctx, claims.UserID, claims.Email), req)
		}
	}
}

// WebSocketAuth authenticates a websocket upgrade from the token query
// parameter, falling back to the Authorization header. Browsers cannot set
// headers on websocket requests.
func WebSocketAuth(jwtManager *auth.JWTManager, r *http.Request) (*auth.Claims, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		var err error
		if token, err = auth.BearerToken(r.Header.Get("Authorization")); err != nil {
			return nil, err
		}
	}
	return jwtManager.Validate(token)
}
