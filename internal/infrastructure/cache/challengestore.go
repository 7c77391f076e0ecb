package cache

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/protocol/webauthncose"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/redis/go-redis/v9"
)

const (
	// RegistrationChallengePrefix is the Redis key prefix for registration ceremonies
	RegistrationChallengePrefix = "webauthn:register:"
	// LoginChallengePrefix is the Redis key prefix for authentication ceremonies
	LoginChallengePrefix = "webauthn:login:"
	// DefaultChallengeTTL is the default lifetime of a pending ceremony (5 minutes)
	DefaultChallengeTTL = 5 * time.Minute

	sessionIDBytes = 32
)

// RegistrationMode distinguishes the two registration entry points.
type RegistrationMode string

const (
	RegistrationModeSignup     RegistrationMode = "signup"
	RegistrationModeAddPasskey RegistrationMode = "add-passkey"
)

// ChallengeData is the ceremony state parked between begin and complete:
// the WebAuthn session data plus the flow context needed to finish
// without trusting anything from the client.
type ChallengeData struct {
	Session        *webauthn.SessionData
	Mode           RegistrationMode
	UserID         uint
	PendingUserSID string
	PendingEmail   string
	PendingName    string
	PasskeyName    string
}

// ChallengeStore stores WebAuthn ceremony state keyed by a
// server-generated session id, in separate registration and login
// namespaces. Claim is a GETDEL, so a session id is spendable once.
type ChallengeStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewChallengeStore creates a new challenge store
func NewChallengeStore(client *redis.Client) *ChallengeStore {
	return &ChallengeStore{
		client: client,
		ttl:    DefaultChallengeTTL,
	}
}

// NewChallengeStoreWithTTL creates a new challenge store with a custom TTL
func NewChallengeStoreWithTTL(client *redis.Client, ttl time.Duration) *ChallengeStore {
	if ttl == 0 {
		ttl = DefaultChallengeTTL
	}
	return &ChallengeStore{
		client: client,
		ttl:    ttl,
	}
}

// GenerateSessionID returns a fresh ceremony session id: 32 random
// bytes, base64url without padding.
func GenerateSessionID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// credentialParameterWrapper wraps protocol.CredentialParameter for JSON serialization
type credentialParameterWrapper struct {
	Type      string `json:"type"`
	Algorithm int64  `json:"alg"`
}

// challengeDataWrapper wraps ChallengeData for JSON serialization
type challengeDataWrapper struct {
	Challenge            string                       `json:"challenge"`
	RelyingPartyID       string                       `json:"rp_id"`
	UserID               []byte                       `json:"user_id"`
	AllowedCredentialIDs [][]byte                     `json:"allowed_credential_ids,omitempty"`
	UserVerification     string                       `json:"user_verification"`
	Expires              int64                        `json:"expires"` // Unix timestamp in milliseconds
	CredParams           []credentialParameterWrapper `json:"cred_params,omitempty"`
	Mediation            string                       `json:"mediation,omitempty"`

	Mode           string `json:"mode,omitempty"`
	OwnerID        uint   `json:"owner_id,omitempty"`
	PendingUserSID string `json:"pending_user_sid,omitempty"`
	PendingEmail   string `json:"pending_email,omitempty"`
	PendingName    string `json:"pending_name,omitempty"`
	PasskeyName    string `json:"passkey_name,omitempty"`
}

// StoreRegistration saves registration ceremony state under the session id
func (s *ChallengeStore) StoreRegistration(ctx context.Context, sessionID string, data *ChallengeData) error {
	return s.store(ctx, RegistrationChallengePrefix, sessionID, data)
}

// StoreLogin saves authentication ceremony state under the session id
func (s *ChallengeStore) StoreLogin(ctx context.Context, sessionID string, data *ChallengeData) error {
	return s.store(ctx, LoginChallengePrefix, sessionID, data)
}

// ClaimRegistration atomically retrieves and deletes registration state.
// Returns (nil, nil) when the session id is unknown or expired.
func (s *ChallengeStore) ClaimRegistration(ctx context.Context, sessionID string) (*ChallengeData, error) {
	return s.claim(ctx, RegistrationChallengePrefix, sessionID)
}

// ClaimLogin atomically retrieves and deletes authentication state.
// Returns (nil, nil) when the session id is unknown or expired.
func (s *ChallengeStore) ClaimLogin(ctx context.Context, sessionID string) (*ChallengeData, error) {
	return s.claim(ctx, LoginChallengePrefix, sessionID)
}

// DeleteRegistration removes registration state. Deleting an absent
// session id is not an error.
func (s *ChallengeStore) DeleteRegistration(ctx context.Context, sessionID string) error {
	return s.delete(ctx, RegistrationChallengePrefix, sessionID)
}

// DeleteLogin removes authentication state. Deleting an absent session
// id is not an error.
func (s *ChallengeStore) DeleteLogin(ctx context.Context, sessionID string) error {
	return s.delete(ctx, LoginChallengePrefix, sessionID)
}

func (s *ChallengeStore) store(ctx context.Context, prefix, sessionID string, data *ChallengeData) error {
	if sessionID == "" {
		return errors.New("session ID cannot be empty")
	}
	if data == nil || data.Session == nil {
		return errors.New("session data cannot be nil")
	}

	var credParams []credentialParameterWrapper
	for _, cp := range data.Session.CredParams {
		credParams = append(credParams, credentialParameterWrapper{
			Type:      string(cp.Type),
			Algorithm: int64(cp.Algorithm),
		})
	}

	wrapper := challengeDataWrapper{
		Challenge:            data.Session.Challenge,
		RelyingPartyID:       data.Session.RelyingPartyID,
		UserID:               data.Session.UserID,
		AllowedCredentialIDs: data.Session.AllowedCredentialIDs,
		UserVerification:     string(data.Session.UserVerification),
		Expires:              data.Session.Expires.UnixMilli(),
		CredParams:           credParams,
		Mediation:            string(data.Session.Mediation),
		Mode:                 string(data.Mode),
		OwnerID:              data.UserID,
		PendingUserSID:       data.PendingUserSID,
		PendingEmail:         data.PendingEmail,
		PendingName:          data.PendingName,
		PasskeyName:          data.PasskeyName,
	}

	payload, err := json.Marshal(wrapper)
	if err != nil {
		return fmt.Errorf("failed to marshal challenge data: %w", err)
	}

	if err := s.client.Set(ctx, prefix+sessionID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store challenge data in Redis: %w", err)
	}

	return nil
}

func (s *ChallengeStore) claim(ctx context.Context, prefix, sessionID string) (*ChallengeData, error) {
	if sessionID == "" {
		return nil, errors.New("session ID cannot be empty")
	}

	// GETDEL so a concurrent complete with the same session id loses
	payload, err := s.client.GetDel(ctx, prefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to retrieve challenge data from Redis: %w", err)
	}

	var wrapper challengeDataWrapper
	if err := json.Unmarshal([]byte(payload), &wrapper); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge data: %w", err)
	}

	var credParams []protocol.CredentialParameter
	for _, cp := range wrapper.CredParams {
		credParams = append(credParams, protocol.CredentialParameter{
			Type:      protocol.CredentialType(cp.Type),
			Algorithm: webauthncose.COSEAlgorithmIdentifier(cp.Algorithm),
		})
	}

	return &ChallengeData{
		Session: &webauthn.SessionData{
			Challenge:            wrapper.Challenge,
			RelyingPartyID:       wrapper.RelyingPartyID,
			UserID:               wrapper.UserID,
			AllowedCredentialIDs: wrapper.AllowedCredentialIDs,
			UserVerification:     protocol.UserVerificationRequirement(wrapper.UserVerification),
			Expires:              time.UnixMilli(wrapper.Expires),
			CredParams:           credParams,
			Mediation:            protocol.CredentialMediationRequirement(wrapper.Mediation),
		},
		Mode:           RegistrationMode(wrapper.Mode),
		UserID:         wrapper.OwnerID,
		PendingUserSID: wrapper.PendingUserSID,
		PendingEmail:   wrapper.PendingEmail,
		PendingName:    wrapper.PendingName,
		PasskeyName:    wrapper.PasskeyName,
	}, nil
}

func (s *ChallengeStore) delete(ctx context.Context, prefix, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.client.Del(ctx, prefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete challenge data from Redis: %w", err)
	}
	return nil
}
