package apikey

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"

	"mcprouter/internal/shared/biztime"
)

// KeyType distinguishes the two classes of API credential. The type is
// immutable after creation and every lookup filters by the expected
// type, so a key of one class is never accepted where the other is
// required.
type KeyType string

const (
	// KeyTypeUser identifies an end-user to be resolved. Stored raw and
	// looked up by exact value.
	KeyTypeUser KeyType = "user"
	// KeyTypeServer authenticates an automated caller service. Only a
	// SHA-256 digest is stored; the raw secret is shown once at
	// creation and never retrievable again.
	KeyTypeServer KeyType = "server"
)

// RawKeyBytes is the entropy of a generated secret: 32 bytes, hex
// encoded to 64 characters.
const RawKeyBytes = 32

// Key is an opaque API credential record. Value holds the raw secret
// for user keys and the SHA-256 hex digest for server keys.
type Key struct {
	id        uint
	sid       string // external API identifier (key_xxx)
	name      string
	value     string
	keyType   KeyType
	createdBy uint
	createdAt time.Time
	updatedAt time.Time
}

// GenerateRawKey returns a fresh secret from a CSPRNG.
func GenerateRawKey() (string, error) {
	b := make([]byte, RawKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate key material: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashKey returns the deterministic one-way digest used for server-key
// storage and comparison.
func HashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// NewKey creates a key record and returns it together with the raw
// secret. The raw secret is visible exactly once: server keys persist
// only its digest.
func NewKey(name string, keyType KeyType, createdBy uint, sidGenerator func() (string, error)) (*Key, string, error) {
	if name == "" {
		return nil, "", fmt.Errorf("key name is required")
	}
	if keyType != KeyTypeUser && keyType != KeyTypeServer {
		return nil, "", fmt.Errorf("invalid key type %q", keyType)
	}
	if createdBy == 0 {
		return nil, "", fmt.Errorf("key owner is required")
	}

	sid, err := sidGenerator()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate SID: %w", err)
	}

	raw, err := GenerateRawKey()
	if err != nil {
		return nil, "", err
	}

	value := raw
	if keyType == KeyTypeServer {
		value = HashKey(raw)
	}

	now := biztime.NowUTC()
	return &Key{
		sid:       sid,
		name:      name,
		value:     value,
		keyType:   keyType,
		createdBy: createdBy,
		createdAt: now,
		updatedAt: now,
	}, raw, nil
}

// ReconstructKey reconstructs a key from persistence.
func ReconstructKey(
	id uint,
	sid string,
	name string,
	value string,
	keyType KeyType,
	createdBy uint,
	createdAt time.Time,
	updatedAt time.Time,
) (*Key, error) {
	if id == 0 {
		return nil, fmt.Errorf("key ID cannot be zero")
	}
	if sid == "" {
		return nil, fmt.Errorf("key SID is required")
	}

	return &Key{
		id:        id,
		sid:       sid,
		name:      name,
		value:     value,
		keyType:   keyType,
		createdBy: createdBy,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

// ID returns the internal ID.
func (k *Key) ID() uint { return k.id }

// SID returns the external identifier (key_xxx).
func (k *Key) SID() string { return k.sid }

// Name returns the user-supplied label.
func (k *Key) Name() string { return k.name }

// Value returns the stored value: raw secret for user keys, digest for
// server keys. Never exposed through listing responses.
func (k *Key) Value() string { return k.value }

// Type returns the key class.
func (k *Key) Type() KeyType { return k.keyType }

// CreatedBy returns the owning user's internal ID.
func (k *Key) CreatedBy() uint { return k.createdBy }

// CreatedAt returns when the key was created.
func (k *Key) CreatedAt() time.Time { return k.createdAt }

// UpdatedAt returns when the key was last updated.
func (k *Key) UpdatedAt() time.Time { return k.updatedAt }

// SetID sets the internal ID (only for persistence layer use).
func (k *Key) SetID(id uint) error {
	if k.id != 0 {
		return fmt.Errorf("key ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("key ID cannot be zero")
	}
	k.id = id
	return nil
}

// MatchesRaw compares a presented raw secret against the stored value
// in constant time, applying the per-type hashing discipline.
func (k *Key) MatchesRaw(raw string) bool {
	presented := raw
	if k.keyType == KeyTypeServer {
		presented = HashKey(raw)
	}
	return subtle.ConstantTimeCompare([]byte(k.value), []byte(presented)) == 1
}
