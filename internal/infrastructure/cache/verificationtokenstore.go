package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	verificationTokenPrefix = "email:verify:"
	// verificationTokenBackstopTTL caps how long a record can linger in
	// Redis. The real expiry is the explicit ExpiresAt in the payload.
	verificationTokenBackstopTTL = 24 * time.Hour
	verificationTokenBytes       = 32
)

// VerificationToken is the stored verification record for one email.
// Keying by email means issuing a new token replaces the old one, so at
// most one token is live per address.
type VerificationToken struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
	IssuedAt  time.Time `json:"issued_at"`
}

// VerificationTokenStore provides Redis-based storage for email
// verification tokens, keyed by email address.
type VerificationTokenStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewVerificationTokenStore creates a new verification token store
func NewVerificationTokenStore(client *redis.Client) *VerificationTokenStore {
	return &VerificationTokenStore{
		client: client,
		now:    time.Now,
	}
}

// NewVerificationTokenStoreWithClock creates a store with an injected clock
func NewVerificationTokenStoreWithClock(client *redis.Client, now func() time.Time) *VerificationTokenStore {
	return &VerificationTokenStore{
		client: client,
		now:    now,
	}
}

// GenerateVerificationToken returns a fresh token: 32 random bytes, hex encoded.
func GenerateVerificationToken() (string, error) {
	b := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate verification token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Create stores a verification token for the email, replacing any
// previous one.
func (s *VerificationTokenStore) Create(ctx context.Context, email, token string, expiresAt time.Time) error {
	if email == "" {
		return errors.New("email cannot be empty")
	}
	if token == "" {
		return errors.New("token cannot be empty")
	}

	record := VerificationToken{
		Token:     token,
		Email:     email,
		ExpiresAt: expiresAt.UTC(),
		IssuedAt:  s.now().UTC(),
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal verification token: %w", err)
	}

	if err := s.client.Set(ctx, verificationTokenPrefix+email, payload, verificationTokenBackstopTTL).Err(); err != nil {
		return fmt.Errorf("failed to store verification token in Redis: %w", err)
	}

	return nil
}

// Get retrieves the record for the email when the presented token
// matches it exactly. Returns (nil, nil) when the email has no record or
// the token differs; the caller cannot tell which.
func (s *VerificationTokenStore) Get(ctx context.Context, email, token string) (*VerificationToken, error) {
	if email == "" || token == "" {
		return nil, nil
	}

	payload, err := s.client.Get(ctx, verificationTokenPrefix+email).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve verification token from Redis: %w", err)
	}

	var record VerificationToken
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal verification token: %w", err)
	}

	if record.Token != token {
		return nil, nil
	}

	return &record, nil
}

// IsExpired reports whether the record's explicit expiry has passed.
func (s *VerificationTokenStore) IsExpired(record *VerificationToken) bool {
	if record == nil {
		return true
	}
	return !s.now().Before(record.ExpiresAt)
}

// Delete removes the record for the email. When token is non-empty the
// delete only happens if the stored token still matches, so a reissued
// token is not clobbered by a stale consumer.
func (s *VerificationTokenStore) Delete(ctx context.Context, email, token string) error {
	if email == "" {
		return nil
	}

	key := verificationTokenPrefix + email

	if token == "" {
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to delete verification token from Redis: %w", err)
		}
		return nil
	}

	payload, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("failed to retrieve verification token from Redis: %w", err)
	}

	var record VerificationToken
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return fmt.Errorf("failed to unmarshal verification token: %w", err)
	}
	if record.Token != token {
		return nil
	}

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete verification token from Redis: %w", err)
	}

	return nil
}
