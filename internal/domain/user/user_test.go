package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUserSID() (string, error) { return "usr_test12345678", nil }

func TestNewUser(t *testing.T) {
	u, err := NewUser("alice@example.com", "Alice", testUserSID)
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", u.Email())
	assert.Equal(t, "Alice", u.Name())
	assert.Equal(t, RoleUser, u.Role())
	assert.False(t, u.IsEmailVerified())
}

func TestNewUser_NameDefaultsToEmail(t *testing.T) {
	u, err := NewUser("bob@example.com", "", testUserSID)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", u.Name())
}

func TestNewUser_RequiresEmail(t *testing.T) {
	_, err := NewUser("", "Alice", testUserSID)
	assert.Error(t, err)
}

func TestMarkEmailVerified(t *testing.T) {
	u, err := NewUser("alice@example.com", "Alice", testUserSID)
	require.NoError(t, err)

	require.NoError(t, u.MarkEmailVerified())
	assert.True(t, u.IsEmailVerified())
	assert.NotNil(t, u.EmailVerifiedAt())

	assert.Error(t, u.MarkEmailVerified(), "second verification should fail")
}

func TestVerificationEmailWait(t *testing.T) {
	u, err := NewUser("alice@example.com", "Alice", testUserSID)
	require.NoError(t, err)

	cooldown := 60 * time.Second
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Zero(t, u.VerificationEmailWait(t0, cooldown), "never sent means no wait")

	u.MarkVerificationEmailSent(t0)

	assert.Equal(t, 30*time.Second, u.VerificationEmailWait(t0.Add(30*time.Second), cooldown))
	assert.Zero(t, u.VerificationEmailWait(t0.Add(60*time.Second), cooldown))
	assert.Zero(t, u.VerificationEmailWait(t0.Add(61*time.Second), cooldown))
}
