package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"mcprouter/internal/domain/apikey"
	"mcprouter/internal/infrastructure/persistence/mappers"
	"mcprouter/internal/infrastructure/persistence/models"
	"mcprouter/internal/shared/logger"
)

// APIKeyRepository implements the API key repository interface
type APIKeyRepository struct {
	db     *gorm.DB
	mapper mappers.APIKeyMapper
	logger logger.Interface
}

// NewAPIKeyRepository creates a new API key repository
func NewAPIKeyRepository(db *gorm.DB, logger logger.Interface) apikey.Repository {
	return &APIKeyRepository{
		db:     db,
		mapper: mappers.NewAPIKeyMapper(),
		logger: logger,
	}
}

// Create creates a new key record
func (r *APIKeyRepository) Create(ctx context.Context, key *apikey.Key) error {
	model := r.mapper.ToModel(key)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create API key in database", "error", err)
		return fmt.Errorf("failed to create API key: %w", err)
	}

	if err := key.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set API key ID", "error", err)
		return fmt.Errorf("failed to set API key ID: %w", err)
	}

	r.logger.Infow("API key created successfully", "id", model.ID, "sid", model.SID, "type", model.Type)
	return nil
}

// GetByTypeAndValue retrieves a key by type and stored value. The type
// filter belongs to the query itself so keys of one class never answer
// for the other.
func (r *APIKeyRepository) GetByTypeAndValue(ctx context.Context, keyType apikey.KeyType, value string) (*apikey.Key, error) {
	var model models.APIKeyModel

	if err := r.db.WithContext(ctx).Where("type = ? AND value = ?", string(keyType), value).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get API key by type and value", "type", keyType, "error", err)
		return nil, fmt.Errorf("failed to get API key: %w", err)
	}

	entity, err := r.mapper.ToEntity(&model)
	if err != nil {
		r.logger.Errorw("failed to map API key model to entity", "error", err)
		return nil, fmt.Errorf("failed to map API key: %w", err)
	}

	return entity, nil
}

// ListByOwner retrieves keys of one type for an owner, newest first,
// strictly older than the cursor time when given.
func (r *APIKeyRepository) ListByOwner(ctx context.Context, ownerID uint, keyType apikey.KeyType, before *time.Time, limit int) ([]*apikey.Key, error) {
	var keyModels []*models.APIKeyModel

	query := r.db.WithContext(ctx).
		Where("created_by = ? AND type = ?", ownerID, string(keyType)).
		Order("created_at DESC").
		Limit(limit)
	if before != nil {
		query = query.Where("created_at < ?", *before)
	}

	if err := query.Find(&keyModels).Error; err != nil {
		r.logger.Errorw("failed to list API keys by owner", "owner_id", ownerID, "type", keyType, "error", err)
		return nil, fmt.Errorf("failed to list API keys: %w", err)
	}

	keys, err := r.mapper.ToEntities(keyModels)
	if err != nil {
		r.logger.Errorw("failed to map API key models to entities", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("failed to map API keys: %w", err)
	}

	return keys, nil
}

// DeleteBySID deletes a key by external SID with the owner filter in the
// delete itself. Returns the deleted record, or nil when the key is
// absent or owned by someone else; callers cannot tell which.
func (r *APIKeyRepository) DeleteBySID(ctx context.Context, sid string, ownerID uint) (*apikey.Key, error) {
	var deleted *apikey.Key

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.APIKeyModel
		if err := tx.Where("sid = ? AND created_by = ?", sid, ownerID).First(&model).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return fmt.Errorf("failed to get API key for deletion: %w", err)
		}

		result := tx.Where("sid = ? AND created_by = ?", sid, ownerID).Delete(&models.APIKeyModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete API key: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}

		entity, err := r.mapper.ToEntity(&model)
		if err != nil {
			return fmt.Errorf("failed to map API key: %w", err)
		}
		deleted = entity
		return nil
	})
	if err != nil {
		r.logger.Errorw("failed to delete API key by SID", "sid", sid, "error", err)
		return nil, err
	}

	if deleted != nil {
		r.logger.Infow("API key deleted successfully", "sid", sid, "owner_id", ownerID)
	}
	return deleted, nil
}
