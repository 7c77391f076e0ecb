package apikey

import (
	"context"
	"time"
)

// Repository defines the interface for API key data operations.
// Lookup operations return (nil, nil) when no record of the exact
// expected type matches, so callers can map absence uniformly to an
// authentication failure.
type Repository interface {
	// Create creates a new key record
	Create(ctx context.Context, key *Key) error

	// GetByTypeAndValue retrieves a key by type and stored value. The
	// type filter is part of the query: a user key's value never
	// matches a server lookup and vice versa.
	GetByTypeAndValue(ctx context.Context, keyType KeyType, value string) (*Key, error)

	// ListByOwner retrieves keys of one type for an owner, newest
	// first, strictly older than the cursor time when given. Callers
	// request limit+1 rows to detect a further page.
	ListByOwner(ctx context.Context, ownerID uint, keyType KeyType, before *time.Time, limit int) ([]*Key, error)

	// DeleteBySID deletes a key by external SID, with the owner filter
	// in the same DELETE statement. Returns the deleted record, or nil
	// when the key is absent or owned by someone else; callers must
	// not be able to tell which.
	DeleteBySID(ctx context.Context, sid string, ownerID uint) (*Key, error)
}
