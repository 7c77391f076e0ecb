package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"mcprouter/internal/domain/apikey"
	"mcprouter/internal/infrastructure/persistence/models"
	"mcprouter/internal/shared/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.UserModel{},
		&models.PasskeyCredentialModel{},
		&models.APIKeyModel{},
		&models.ServerEntryModel{},
	))

	return db
}

func seedKey(t *testing.T, db *gorm.DB, sid, value, keyType string, ownerID uint, createdAt time.Time) {
	model := &models.APIKeyModel{
		SID:       sid,
		Name:      sid,
		Value:     value,
		Type:      keyType,
		CreatedBy: ownerID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, db.Create(model).Error)
}

func TestAPIKeyRepository_CreateAndGetByTypeAndValue(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAPIKeyRepository(db, logger.NewLogger())
	ctx := context.Background()

	key, raw, err := apikey.NewKey("ci server", apikey.KeyTypeServer, 1, func() (string, error) {
		return "key_server000001", nil
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, key))
	assert.NotZero(t, key.ID())

	// Server keys are found by digest, not by raw value
	found, err := repo.GetByTypeAndValue(ctx, apikey.KeyTypeServer, apikey.HashKey(raw))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, key.SID(), found.SID())

	found, err = repo.GetByTypeAndValue(ctx, apikey.KeyTypeServer, raw)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestAPIKeyRepository_GetByTypeAndValue_TypeFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAPIKeyRepository(db, logger.NewLogger())
	ctx := context.Background()

	now := time.Now().UTC()
	seedKey(t, db, "key_user00000001", "raw-user-value", "user", 1, now)

	// The same stored value must not answer a server-typed lookup
	found, err := repo.GetByTypeAndValue(ctx, apikey.KeyTypeServer, "raw-user-value")
	require.NoError(t, err)
	assert.Nil(t, found)

	found, err = repo.GetByTypeAndValue(ctx, apikey.KeyTypeUser, "raw-user-value")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, apikey.KeyTypeUser, found.Type())
}

func TestAPIKeyRepository_ListByOwner_Pagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAPIKeyRepository(db, logger.NewLogger())
	ctx := context.Background()

	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedKey(t, db, fmt.Sprintf("key_owner1_%06d", i), fmt.Sprintf("value-%d", i), "user", 1, base.Add(time.Duration(i)*time.Minute))
	}
	// Another owner and another type must never appear
	seedKey(t, db, "key_owner2_000001", "value-other-owner", "user", 2, base)
	seedKey(t, db, "key_owner1_server", "value-server", "server", 1, base)

	keys, err := repo.ListByOwner(ctx, 1, apikey.KeyTypeUser, nil, 3)
	require.NoError(t, err)
	require.Len(t, keys, 3)
	assert.Equal(t, "key_owner1_000004", keys[0].SID(), "newest first")
	assert.Equal(t, "key_owner1_000002", keys[2].SID())

	// Next page: strictly older than the last item of the first page
	before := keys[2].CreatedAt()
	keys, err = repo.ListByOwner(ctx, 1, apikey.KeyTypeUser, &before, 3)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, "key_owner1_000001", keys[0].SID())
	assert.Equal(t, "key_owner1_000000", keys[1].SID())
}

func TestAPIKeyRepository_DeleteBySID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAPIKeyRepository(db, logger.NewLogger())
	ctx := context.Background()

	now := time.Now().UTC()
	seedKey(t, db, "key_mine00000001", "value-mine", "user", 1, now)

	deleted, err := repo.DeleteBySID(ctx, "key_mine00000001", 1)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, "key_mine00000001", deleted.SID())

	// Already gone
	deleted, err = repo.DeleteBySID(ctx, "key_mine00000001", 1)
	require.NoError(t, err)
	assert.Nil(t, deleted)
}

func TestAPIKeyRepository_DeleteBySID_OwnerScoped(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAPIKeyRepository(db, logger.NewLogger())
	ctx := context.Background()

	now := time.Now().UTC()
	seedKey(t, db, "key_owned0000001", "value-owned", "user", 1, now)

	// A foreign owner's delete must look exactly like a missing key
	deleted, err := repo.DeleteBySID(ctx, "key_owned0000001", 2)
	require.NoError(t, err)
	assert.Nil(t, deleted)

	var count int64
	require.NoError(t, db.Model(&models.APIKeyModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "the key must still exist")
}
