package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// UserLookup loads the current user's record.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// AuthService implements apiconnect.AuthServiceHandler.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	users         UserLookup
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, users UserLookup, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		users:         users,
		logger:        logger,
	}
}

// Register creates an account and returns a session token.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	s.logger.InfoContext(ctx, "Register request", "email", req.Msg.Email)

	user, err := s.authenticator.Register(ctx, req.Msg.Email, req.Msg.DisplayName, req.Msg.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			return nil, connect.NewError(connect.CodeAlreadyExists, err)
		case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidEmail):
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		s.logger.ErrorContext(ctx, "Registration failed", "email", req.Msg.Email, "error", err)
		return nil, connect.NewError(connect.CodeUnavailable, errRetry)
	}

	token, err := s.token(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "User registered", "user_id", user.ID)
	return connect.NewResponse(&api.RegisterResponse{User: toAPIUser(user), Token: token}), nil
}

// Login exchanges credentials for a session token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	if req.Msg.Email == "" || req.Msg.Password == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.logger.WarnContext(ctx, "Login failed", "email", req.Msg.Email)
		return nil, connect.NewError(connect.CodeUnauthenticated, err)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Login failed", "email", req.Msg.Email, "error", err)
		return nil, connect.NewError(connect.CodeUnavailable, errRetry)
	}

	token, err := s.token(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "User logged in", "user_id", user.ID)
	return connect.NewResponse(&api.LoginResponse{User: toAPIUser(user), Token: token}), nil
}

// GetCurrentUser returns the authenticated caller.
func (s *AuthService) GetCurrentUser(ctx context.Context, _ *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		// A valid token for a vanished account.
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Current user lookup failed", "user_id", userID, "error", err)
		return nil, connect.NewError(connect.CodeUnavailable, errRetry)
	}
	return connect.NewResponse(&api.GetCurrentUserResponse{User: toAPIUser(user)}), nil
}

func (s *AuthService) token(ctx context.Context, user *models.User) (string, error) {
	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to generate token", "user_id", user.ID, "error", err)
		return "", connect.NewError(connect.CodeInternal, err)
	}
	return token, nil
}
