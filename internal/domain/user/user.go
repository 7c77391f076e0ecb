package user

import (
	"fmt"
	"time"

	"mcprouter/internal/shared/biztime"
)

// Role is the authorization role of a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User represents a registered identity. A user with a non-empty email
// and a nil emailVerifiedAt is unverified and must be kept out of
// protected actions.
type User struct {
	id                          uint
	sid                         string // external API identifier (usr_xxx)
	name                        string
	email                       string
	emailVerifiedAt             *time.Time
	lastVerificationEmailSentAt *time.Time
	role                        Role
	createdAt                   time.Time
	updatedAt                   time.Time
}

// NewUser creates a new, unverified user.
func NewUser(email, name string, sidGenerator func() (string, error)) (*User, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if name == "" {
		name = email
	}

	sid, err := sidGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to generate SID: %w", err)
	}

	now := biztime.NowUTC()
	return &User{
		sid:       sid,
		name:      name,
		email:     email,
		role:      RoleUser,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructUser reconstructs a user from persistence.
func ReconstructUser(
	id uint,
	sid string,
	name string,
	email string,
	emailVerifiedAt *time.Time,
	lastVerificationEmailSentAt *time.Time,
	role Role,
	createdAt time.Time,
	updatedAt time.Time,
) (*User, error) {
	if id == 0 {
		return nil, fmt.Errorf("user ID cannot be zero")
	}
	if sid == "" {
		return nil, fmt.Errorf("user SID is required")
	}

	return &User{
		id:                          id,
		sid:                         sid,
		name:                        name,
		email:                       email,
		emailVerifiedAt:             emailVerifiedAt,
		lastVerificationEmailSentAt: lastVerificationEmailSentAt,
		role:                        role,
		createdAt:                   createdAt,
		updatedAt:                   updatedAt,
	}, nil
}

// ID returns the internal ID.
func (u *User) ID() uint { return u.id }

// SID returns the external identifier (usr_xxx).
func (u *User) SID() string { return u.sid }

// Name returns the display name.
func (u *User) Name() string { return u.name }

// Email returns the email address, empty if never captured.
func (u *User) Email() string { return u.email }

// EmailVerifiedAt returns when the email was verified, nil if unverified.
func (u *User) EmailVerifiedAt() *time.Time { return u.emailVerifiedAt }

// LastVerificationEmailSentAt returns when the last verification email went out.
func (u *User) LastVerificationEmailSentAt() *time.Time { return u.lastVerificationEmailSentAt }

// Role returns the authorization role.
func (u *User) Role() Role { return u.role }

// CreatedAt returns when the user was created.
func (u *User) CreatedAt() time.Time { return u.createdAt }

// UpdatedAt returns when the user was last updated.
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// IsEmailVerified reports whether the user's email has been verified.
func (u *User) IsEmailVerified() bool {
	return u.emailVerifiedAt != nil
}

// SetID sets the internal ID (only for persistence layer use).
func (u *User) SetID(id uint) error {
	if u.id != 0 {
		return fmt.Errorf("user ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("user ID cannot be zero")
	}
	u.id = id
	return nil
}

// MarkEmailVerified records a successful email verification.
func (u *User) MarkEmailVerified() error {
	if u.emailVerifiedAt != nil {
		return fmt.Errorf("email is already verified")
	}
	now := biztime.NowUTC()
	u.emailVerifiedAt = &now
	u.updatedAt = now
	return nil
}

// VerificationEmailWait returns how long the user must still wait before
// another verification email may be issued. Zero means a send is allowed.
func (u *User) VerificationEmailWait(now time.Time, cooldown time.Duration) time.Duration {
	if u.lastVerificationEmailSentAt == nil {
		return 0
	}
	elapsed := now.Sub(*u.lastVerificationEmailSentAt)
	if elapsed >= cooldown {
		return 0
	}
	return cooldown - elapsed
}

// MarkVerificationEmailSent updates the cooldown timestamp. Called only
// after a send actually succeeded.
func (u *User) MarkVerificationEmailSent(now time.Time) {
	sent := now.UTC()
	u.lastVerificationEmailSentAt = &sent
	u.updatedAt = sent
}
