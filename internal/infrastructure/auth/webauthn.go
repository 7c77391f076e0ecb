package auth

import (
	"fmt"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"

	"mcprouter/internal/shared/config"
)

const defaultCeremonyTimeout = 60 * time.Second

// WebAuthnService runs the relying-party side of passkey ceremonies.
// Attestation is "none": the directory only needs possession of the
// key, not the make of the authenticator.
type WebAuthnService struct {
	webAuthn *webauthn.WebAuthn
}

func NewWebAuthnService(cfg config.WebAuthnConfig) (*WebAuthnService, error) {
	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("WebAuthn is not configured: rp_id, rp_name, and rp_origins are required")
	}

	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout == 0 {
		timeout = defaultCeremonyTimeout
	}

	w, err := webauthn.New(&webauthn.Config{
		RPDisplayName:         cfg.RPName,
		RPID:                  cfg.RPID,
		RPOrigins:             cfg.RPOrigins,
		AttestationPreference: protocol.PreferNoAttestation,
		Timeouts: webauthn.TimeoutsConfig{
			Login:        ceremonyTimeout(timeout),
			Registration: ceremonyTimeout(timeout),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create WebAuthn instance: %w", err)
	}

	return &WebAuthnService{webAuthn: w}, nil
}

func ceremonyTimeout(d time.Duration) webauthn.TimeoutConfig {
	return webauthn.TimeoutConfig{
		Enforce:    true,
		Timeout:    d,
		TimeoutUVD: d,
	}
}

// BeginRegistration starts the registration ceremony for a user.
func (s *WebAuthnService) BeginRegistration(user webauthn.User, opts ...webauthn.RegistrationOption) (*protocol.CredentialCreation, *webauthn.SessionData, error) {
	return s.webAuthn.BeginRegistration(user, opts...)
}

// FinishRegistration verifies the attestation response against the
// parked session data and yields the new credential.
func (s *WebAuthnService) FinishRegistration(user webauthn.User, sessionData webauthn.SessionData, response *protocol.ParsedCredentialCreationData) (*webauthn.Credential, error) {
	return s.webAuthn.CreateCredential(user, sessionData, response)
}

// BeginLogin starts a login ceremony scoped to a known user's
// credentials.
func (s *WebAuthnService) BeginLogin(user webauthn.User, opts ...webauthn.LoginOption) (*protocol.CredentialAssertion, *webauthn.SessionData, error) {
	return s.webAuthn.BeginLogin(user, opts...)
}

// BeginDiscoverableLogin starts a login ceremony where the
// authenticator picks the account.
func (s *WebAuthnService) BeginDiscoverableLogin(opts ...webauthn.LoginOption) (*protocol.CredentialAssertion, *webauthn.SessionData, error) {
	return s.webAuthn.BeginDiscoverableLogin(opts...)
}

// FinishLogin verifies the assertion for a scoped login.
func (s *WebAuthnService) FinishLogin(user webauthn.User, sessionData webauthn.SessionData, response *protocol.ParsedCredentialAssertionData) (*webauthn.Credential, error) {
	return s.webAuthn.ValidateLogin(user, sessionData, response)
}

// FinishDiscoverableLogin verifies the assertion for a discoverable
// login, resolving the user through the handler.
func (s *WebAuthnService) FinishDiscoverableLogin(
	userHandler webauthn.DiscoverableUserHandler,
	sessionData webauthn.SessionData,
	response *protocol.ParsedCredentialAssertionData,
) (*webauthn.Credential, error) {
	return s.webAuthn.ValidateDiscoverableLogin(userHandler, sessionData, response)
}
