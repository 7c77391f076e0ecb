package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Flow-specific error types for the passkey and key-exchange flows.
// The set is closed: the HTTP boundary switches over these and nothing
// else, so a new variant forces a new mapping.
const (
	ErrorTypeInvalidMode        ErrorType = "invalid_mode"
	ErrorTypeEmailRequired      ErrorType = "email_required"
	ErrorTypeAlreadyRegistered  ErrorType = "already_registered"
	ErrorTypeInvalidSession     ErrorType = "invalid_session"
	ErrorTypeVerificationFailed ErrorType = "verification_failed"
	ErrorTypeEmailNotVerified   ErrorType = "email_not_verified"
	ErrorTypeTokenExpired       ErrorType = "token_expired"
	ErrorTypeTokenInvalid       ErrorType = "token_invalid"
	ErrorTypeResendCooldown     ErrorType = "resend_cooldown"
	ErrorTypeInvalidCredentials ErrorType = "invalid_credentials"
)

// AuthError wraps AppError with security handling context for the
// authentication flows.
type AuthError struct {
	*AppError
	// ShouldLog is false for expected failures (wrong key, expired
	// session) that would only clutter the logs at error level.
	ShouldLog bool
	// SecurityEvent marks failures worth tracking for abuse detection.
	SecurityEvent bool
}

func (e *AuthError) Error() string {
	return e.AppError.Error()
}

func (e *AuthError) Unwrap() error {
	return e.AppError
}

// NewInvalidModeError is returned when registration begin receives an
// unknown mode value.
func NewInvalidModeError(mode string) *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeInvalidMode,
			Message: fmt.Sprintf("invalid registration mode %q", mode),
			Code:    http.StatusBadRequest,
		},
		ShouldLog: false,
	}
}

// NewEmailRequiredError is returned when signup registration begin is
// missing the email field.
func NewEmailRequiredError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeEmailRequired,
			Message: "email is required for signup",
			Code:    http.StatusBadRequest,
		},
		ShouldLog: false,
	}
}

// NewAlreadyRegisteredError is returned when signup is attempted for an
// email that already belongs to a verified user.
func NewAlreadyRegisteredError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeAlreadyRegistered,
			Message: "email already registered",
			Code:    http.StatusBadRequest,
		},
		ShouldLog:     false,
		SecurityEvent: true, // enumeration attempts show up here
	}
}

// NewInvalidSessionError covers both a ceremony session that never
// existed and one whose TTL has lapsed. Callers must not be able to
// tell the two apart.
func NewInvalidSessionError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeInvalidSession,
			Message: "invalid or expired session",
			Code:    http.StatusBadRequest,
		},
		ShouldLog: false,
	}
}

// NewVerificationFailedError is returned when the WebAuthn library
// rejects an attestation or assertion.
func NewVerificationFailedError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeVerificationFailed,
			Message: "credential verification failed",
			Code:    http.StatusBadRequest,
		},
		ShouldLog:     true, // may indicate tampering or a cloned credential
		SecurityEvent: true,
	}
}

// NewEmailNotVerifiedError gates authenticated users whose email is
// still unverified out of protected actions.
func NewEmailNotVerifiedError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeEmailNotVerified,
			Message: "email not verified",
			Code:    http.StatusForbidden,
			Details: "Please verify your email address to continue",
		},
		ShouldLog: false,
	}
}

// NewTokenExpiredError is returned when a verification token's own
// expiry has passed, regardless of the backing store TTL.
func NewTokenExpiredError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeTokenExpired,
			Message: "verification token has expired",
			Code:    http.StatusBadRequest,
		},
		ShouldLog: false,
	}
}

// NewTokenInvalidError is returned when the presented verification
// token does not match the stored one.
func NewTokenInvalidError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeTokenInvalid,
			Message: "invalid verification token",
			Code:    http.StatusBadRequest,
		},
		ShouldLog:     true,
		SecurityEvent: true,
	}
}

// NewResendCooldownError tells the caller how long to wait before
// another verification email may be issued.
func NewResendCooldownError(waitSeconds int) *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeResendCooldown,
			Message: fmt.Sprintf("please wait %d seconds before requesting another email", waitSeconds),
			Code:    http.StatusTooManyRequests,
		},
		ShouldLog: false,
	}
}

// NewInvalidCredentialsError is the generic authentication failure.
// It deliberately does not reveal whether the account or the credential
// was at fault.
func NewInvalidCredentialsError() *AuthError {
	return &AuthError{
		AppError: &AppError{
			Type:    ErrorTypeInvalidCredentials,
			Message: "invalid credentials",
			Code:    http.StatusUnauthorized,
		},
		ShouldLog:     false,
		SecurityEvent: true,
	}
}

// IsAuthError checks if the error is an AuthError (supports wrapped errors via errors.As)
func IsAuthError(err error) bool {
	var authErr *AuthError
	return stderrors.As(err, &authErr)
}

// GetAuthError extracts AuthError from error chain (supports wrapped errors via errors.As)
func GetAuthError(err error) *AuthError {
	var authErr *AuthError
	if stderrors.As(err, &authErr) {
		return authErr
	}
	return nil
}

// ShouldLogAuthError returns true if the authentication error should be logged
func ShouldLogAuthError(err error) bool {
	if authErr := GetAuthError(err); authErr != nil {
		return authErr.ShouldLog
	}
	return true
}

// IsSecurityEvent returns true if the error should be tracked as a security event
func IsSecurityEvent(err error) bool {
	if authErr := GetAuthError(err); authErr != nil {
		return authErr.SecurityEvent
	}
	return false
}
