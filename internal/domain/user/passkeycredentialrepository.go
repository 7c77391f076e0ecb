package user

import (
	"context"
	"errors"
)

// ErrLastCredential reports a delete refused because it would remove
// the user's only passkey.
var ErrLastCredential = errors.New("cannot delete the last passkey credential")

// PasskeyCredentialRepository defines the interface for passkey credential data operations
type PasskeyCredentialRepository interface {
	// Create creates a new passkey credential
	Create(ctx context.Context, credential *PasskeyCredential) error

	// GetByCredentialID retrieves a passkey credential by WebAuthn credential ID
	GetByCredentialID(ctx context.Context, credentialID []byte) (*PasskeyCredential, error)

	// GetByUserID retrieves all passkey credentials for a user
	GetByUserID(ctx context.Context, userID uint) ([]*PasskeyCredential, error)

	// Update updates an existing passkey credential
	Update(ctx context.Context, credential *PasskeyCredential) error

	// DeleteBySID deletes a credential by external SID, scoped to the
	// owning user in the same statement. The keep-one guard is part of
	// that statement as well, so concurrent deletes cannot each remove
	// one of the last two credentials; a refused delete returns
	// ErrLastCredential. Returns false when nothing matched, without
	// distinguishing "absent" from "not owned".
	DeleteBySID(ctx context.Context, sid string, userID uint) (bool, error)

	// ExistsByCredentialID checks if a credential with the given WebAuthn credential ID exists
	ExistsByCredentialID(ctx context.Context, credentialID []byte) (bool, error)
}
