package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
)

// MismatchDeltaHeader carries, on InvalidArgument errors, how far the
// submitted shares were from the amount they had to add up to.
const MismatchDeltaHeader = "Split-Mismatch-Delta"

var errRetry = errors.New("temporarily unavailable, please retry")

// toConnectError maps ledger error kinds onto connect codes. Anything the
// ledger does not classify is logged and reported as Unavailable.
func toConnectError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, ledger.ErrAlreadyConfirmed):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, ledger.ErrInvalidArgument):
		cerr := connect.NewError(connect.CodeInvalidArgument, err)
		if m, ok := ledger.Mismatch(err); ok {
			cerr.Meta().Set(MismatchDeltaHeader, m.Delta().String())
		}
		return cerr
	case errors.Is(err, ledger.ErrPermissionDenied):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, ledger.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}

	slog.ErrorContext(ctx, "Unclassified failure", "error", err)
	return connect.NewError(connect.CodeUnavailable, errRetry)
}

func invalidArgument(err error) error {
	return connect.NewError(connect.CodeInvalidArgument, err)
}

// caller returns the authenticated user ID set by middleware.RequireAuth.
func caller(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}
