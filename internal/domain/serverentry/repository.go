package serverentry

import (
	"context"
	"time"
)

// Repository defines the interface for directory entry data operations
type Repository interface {
	// Create creates a new entry
	Create(ctx context.Context, entry *Entry) error

	// GetBySID retrieves an entry by external SID (srv_xxx)
	GetBySID(ctx context.Context, sid string) (*Entry, error)

	// List retrieves entries newest first, strictly older than the
	// cursor time when given. Callers request limit+1 rows to detect a
	// further page.
	List(ctx context.Context, before *time.Time, limit int) ([]*Entry, error)

	// DeleteBySID deletes an entry by external SID, scoped to the
	// owning user in the same statement. Returns false when nothing was
	// deleted.
	DeleteBySID(ctx context.Context, sid string, ownerID uint) (bool, error)
}
