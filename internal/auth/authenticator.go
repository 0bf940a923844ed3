// Package auth registers users, verifies their credentials and issues the
// bearer tokens that identify the acting user on every RPC.
package auth

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// Authenticator verifies who a user is. The credential format depends on
// the implementation.
type Authenticator interface {
	// Register creates an account. It returns ErrEmailExists when the email
	// is taken and ErrWeakPassword when the credential is rejected.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the user owning email if credential matches, or
	// ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	ValidateCredential(credential string) error
}
