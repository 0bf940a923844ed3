package ledger

import (
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/storage"
)

// Error kinds returned (wrapped) by ledger operations. Anything else is an
// internal failure the caller may retry.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyConfirmed = errors.New("settlement already confirmed")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func denied(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPermissionDenied, fmt.Sprintf(format, args...))
}

// translate maps storage sentinels onto ledger error kinds.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, storage.ErrConflict):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return err
}

// splitError wraps calculator failures as invalid arguments. A
// *calculator.MismatchError stays reachable through errors.As.
func splitError(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
}

// Mismatch extracts the reconciliation error from err, if any.
func Mismatch(err error) (*calculator.MismatchError, bool) {
	var m *calculator.MismatchError
	if errors.As(err, &m) {
		return m, true
	}
	return nil, false
}
