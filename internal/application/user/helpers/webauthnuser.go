package helpers

import (
	"github.com/go-webauthn/webauthn/webauthn"

	"mcprouter/internal/domain/user"
)

// WebAuthnUser adapts a domain User and its stored credentials to the
// webauthn.User interface. The user handle is the external SID, so the
// handle an authenticator returns during discoverable login maps
// straight back to the account without exposing database row IDs.
type WebAuthnUser struct {
	user        *user.User
	credentials []*user.PasskeyCredential
}

func NewWebAuthnUser(u *user.User, credentials []*user.PasskeyCredential) *WebAuthnUser {
	return &WebAuthnUser{user: u, credentials: credentials}
}

func (w *WebAuthnUser) WebAuthnID() []byte {
	return []byte(w.user.SID())
}

func (w *WebAuthnUser) WebAuthnName() string {
	return w.user.Email()
}

func (w *WebAuthnUser) WebAuthnDisplayName() string {
	return w.user.Name()
}

func (w *WebAuthnUser) WebAuthnCredentials() []webauthn.Credential {
	creds := make([]webauthn.Credential, len(w.credentials))
	for i, c := range w.credentials {
		creds[i] = c.ToWebAuthnCredential()
	}
	return creds
}
