package usecases

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcprouter/internal/domain/user"
	apperrors "mcprouter/internal/shared/errors"
	"mcprouter/internal/shared/logger"
)

func seedCredential(t *testing.T, repo *fakeCredentialRepo, userID uint, n int) *user.PasskeyCredential {
	t.Helper()
	c, err := user.NewPasskeyCredential(
		userID,
		[]byte(fmt.Sprintf("cred-%d-%d", userID, n)),
		[]byte("public-key"),
		"none",
		nil,
		0,
		false,
		false,
		nil,
		fmt.Sprintf("Passkey %d", n),
		func() (string, error) { return fmt.Sprintf("pk_%d_%d", userID, n), nil },
	)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestDeletePasskey_Success(t *testing.T) {
	repo := &fakeCredentialRepo{}
	first := seedCredential(t, repo, 1, 0)
	seedCredential(t, repo, 1, 1)

	uc := NewDeletePasskeyUseCase(repo, logger.NewLogger())

	require.NoError(t, uc.Execute(context.Background(), DeletePasskeyCommand{SID: first.SID(), UserID: 1}))
	assert.Len(t, repo.credentials, 1)
}

func TestDeletePasskey_RefusesLastPasskey(t *testing.T) {
	repo := &fakeCredentialRepo{}
	only := seedCredential(t, repo, 1, 0)

	uc := NewDeletePasskeyUseCase(repo, logger.NewLogger())

	err := uc.Execute(context.Background(), DeletePasskeyCommand{SID: only.SID(), UserID: 1})
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeConflict, appErr.Type)
	assert.Len(t, repo.credentials, 1, "the passkey must survive")
}

func TestDeletePasskey_NotFound(t *testing.T) {
	repo := &fakeCredentialRepo{}
	seedCredential(t, repo, 1, 0)
	seedCredential(t, repo, 1, 1)

	uc := NewDeletePasskeyUseCase(repo, logger.NewLogger())

	err := uc.Execute(context.Background(), DeletePasskeyCommand{SID: "pk_unknown", UserID: 1})
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
}

func TestDeletePasskey_ForeignPasskeyLooksAbsent(t *testing.T) {
	repo := &fakeCredentialRepo{}
	foreign := seedCredential(t, repo, 2, 0)
	seedCredential(t, repo, 1, 0)
	seedCredential(t, repo, 1, 1)

	uc := NewDeletePasskeyUseCase(repo, logger.NewLogger())

	// Deleting someone else's passkey reads exactly like a missing one
	err := uc.Execute(context.Background(), DeletePasskeyCommand{SID: foreign.SID(), UserID: 1})
	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
	assert.Len(t, repo.credentials, 3)
}
