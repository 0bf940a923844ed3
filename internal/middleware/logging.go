package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/metrics"
)

// LoggingInterceptor logs every RPC call with its procedure, caller,
// duration and error code, and records it in m when m is not nil. Install
// it after RequireAuth so the caller is known.
func LoggingInterceptor(m *metrics.Metrics) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			elapsed := time.Since(start)
			userID := GetUserID(ctx) // empty on public procedures
			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			m.ObserveRPC(procedure, code, elapsed)

			var connectErr *connect.Error
			switch {
			case err == nil:
				slog.InfoContext(ctx, "RPC ok",
					"procedure", procedure,
					"user_id", userID,
					"duration_ms", elapsed.Milliseconds(),
				)
			case errors.As(err, &connectErr) && connectErr.Code() != connect.CodeUnavailable && connectErr.Code() != connect.CodeInternal:
				slog.WarnContext(ctx, "RPC error",
					"procedure", procedure,
					"code", connectErr.Code(),
					"error", connectErr.Message(),
					"user_id", userID,
					"duration_ms", elapsed.Milliseconds(),
				)
			default:
				slog.ErrorContext(ctx, "RPC error",
					"procedure", procedure,
					"code", code,
					"error", err,
					"user_id", userID,
					"duration_ms", elapsed.Milliseconds(),
				)
			}
			return resp, err
		}
	}
}
