package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcprouter/internal/domain/user"
)

func newTestUser(t *testing.T) *user.User {
	t.Helper()
	u, err := user.NewUser("alice@example.com", "Alice", func() (string, error) {
		return "usr_test123", nil
	})
	require.NoError(t, err)
	return u
}

func TestWebAuthnUser_HandleIsTheSID(t *testing.T) {
	u := newTestUser(t)
	adapter := NewWebAuthnUser(u, nil)

	assert.Equal(t, []byte("usr_test123"), adapter.WebAuthnID())
	assert.Equal(t, "alice@example.com", adapter.WebAuthnName())
	assert.Equal(t, "Alice", adapter.WebAuthnDisplayName())
}

func TestWebAuthnUser_MapsStoredCredentials(t *testing.T) {
	u := newTestUser(t)

	c, err := user.NewPasskeyCredential(
		1,
		[]byte("credential-id"),
		[]byte("public-key"),
		"none",
		nil,
		7,
		false,
		false,
		nil,
		"Laptop",
		func() (string, error) { return "pk_test123", nil },
	)
	require.NoError(t, err)

	adapter := NewWebAuthnUser(u, []*user.PasskeyCredential{c})

	creds := adapter.WebAuthnCredentials()
	require.Len(t, creds, 1)
	assert.Equal(t, []byte("credential-id"), creds[0].ID)
	assert.Equal(t, uint32(7), creds[0].Authenticator.SignCount)
}

func TestTempWebAuthnUser_UsesProvisionalIdentity(t *testing.T) {
	id, err := GenerateTempUserID()
	require.NoError(t, err)
	require.Len(t, id, 8)

	temp := NewTempWebAuthnUser(id, "bob@example.com", "Bob")
	assert.Equal(t, id, temp.WebAuthnID())
	assert.Equal(t, "bob@example.com", temp.WebAuthnName())
	assert.Equal(t, "Bob", temp.WebAuthnDisplayName())
	assert.Empty(t, temp.WebAuthnCredentials())
}
