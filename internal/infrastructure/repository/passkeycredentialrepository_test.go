package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"mcprouter/internal/domain/user"
	"mcprouter/internal/infrastructure/persistence/models"
	"mcprouter/internal/shared/logger"
)

func seedCredentialRow(t *testing.T, db *gorm.DB, sid string, userID uint) {
	t.Helper()
	model := &models.PasskeyCredentialModel{
		SID:          sid,
		UserID:       userID,
		CredentialID: []byte(fmt.Sprintf("cred-%s", sid)),
		PublicKey:    []byte("public-key"),
	}
	require.NoError(t, db.Create(model).Error)
}

func countCredentialRows(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.PasskeyCredentialModel{}).
		Where("user_id = ?", userID).Count(&count).Error)
	return count
}

func TestPasskeyCredentialRepository_DeleteBySID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPasskeyCredentialRepository(db, logger.NewLogger())
	ctx := context.Background()

	seedCredentialRow(t, db, "pk_first", 1)
	seedCredentialRow(t, db, "pk_second", 1)

	deleted, err := repo.DeleteBySID(ctx, "pk_first", 1)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, int64(1), countCredentialRows(t, db, 1))
}

func TestPasskeyCredentialRepository_DeleteBySID_RefusesLastCredential(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPasskeyCredentialRepository(db, logger.NewLogger())
	ctx := context.Background()

	seedCredentialRow(t, db, "pk_only", 1)

	deleted, err := repo.DeleteBySID(ctx, "pk_only", 1)
	require.ErrorIs(t, err, user.ErrLastCredential)
	assert.False(t, deleted)
	assert.Equal(t, int64(1), countCredentialRows(t, db, 1), "the last credential must survive")
}

func TestPasskeyCredentialRepository_DeleteBySID_OwnerScoped(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPasskeyCredentialRepository(db, logger.NewLogger())
	ctx := context.Background()

	seedCredentialRow(t, db, "pk_foreign", 2)
	seedCredentialRow(t, db, "pk_mine_a", 1)
	seedCredentialRow(t, db, "pk_mine_b", 1)

	// A foreign SID reads like an absent one, even when it is the
	// foreign user's only credential
	deleted, err := repo.DeleteBySID(ctx, "pk_foreign", 1)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, int64(1), countCredentialRows(t, db, 2))
}

func TestPasskeyCredentialRepository_DeleteBySID_UnknownSID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPasskeyCredentialRepository(db, logger.NewLogger())
	ctx := context.Background()

	seedCredentialRow(t, db, "pk_a", 1)
	seedCredentialRow(t, db, "pk_b", 1)

	deleted, err := repo.DeleteBySID(ctx, "pk_missing", 1)
	require.NoError(t, err)
	assert.False(t, deleted)
}
