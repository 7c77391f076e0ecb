package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"mcprouter/internal/domain/serverentry"
	"mcprouter/internal/infrastructure/persistence/mappers"
	"mcprouter/internal/infrastructure/persistence/models"
	"mcprouter/internal/shared/logger"
)

// ServerEntryRepository implements the directory entry repository interface
type ServerEntryRepository struct {
	db     *gorm.DB
	mapper mappers.ServerEntryMapper
	logger logger.Interface
}

// NewServerEntryRepository creates a new server entry repository
func NewServerEntryRepository(db *gorm.DB, logger logger.Interface) serverentry.Repository {
	return &ServerEntryRepository{
		db:     db,
		mapper: mappers.NewServerEntryMapper(),
		logger: logger,
	}
}

// Create creates a new entry
func (r *ServerEntryRepository) Create(ctx context.Context, entry *serverentry.Entry) error {
	model := r.mapper.ToModel(entry)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create server entry in database", "error", err)
		return fmt.Errorf("failed to create server entry: %w", err)
	}

	if err := entry.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set server entry ID", "error", err)
		return fmt.Errorf("failed to set server entry ID: %w", err)
	}

	r.logger.Infow("server entry created successfully", "id", model.ID, "sid", model.SID)
	return nil
}

// GetBySID retrieves an entry by external SID (srv_xxx)
func (r *ServerEntryRepository) GetBySID(ctx context.Context, sid string) (*serverentry.Entry, error) {
	var model models.ServerEntryModel

	if err := r.db.WithContext(ctx).Where("sid = ?", sid).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get server entry by SID", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to get server entry: %w", err)
	}

	entity, err := r.mapper.ToEntity(&model)
	if err != nil {
		r.logger.Errorw("failed to map server entry model to entity", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to map server entry: %w", err)
	}

	return entity, nil
}

// List retrieves entries newest first, strictly older than the cursor
// time when given.
func (r *ServerEntryRepository) List(ctx context.Context, before *time.Time, limit int) ([]*serverentry.Entry, error) {
	var entryModels []*models.ServerEntryModel

	query := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit)
	if before != nil {
		query = query.Where("created_at < ?", *before)
	}

	if err := query.Find(&entryModels).Error; err != nil {
		r.logger.Errorw("failed to list server entries", "error", err)
		return nil, fmt.Errorf("failed to list server entries: %w", err)
	}

	entries, err := r.mapper.ToEntities(entryModels)
	if err != nil {
		r.logger.Errorw("failed to map server entry models to entities", "error", err)
		return nil, fmt.Errorf("failed to map server entries: %w", err)
	}

	return entries, nil
}

// DeleteBySID deletes an entry by external SID, scoped to the owning
// user in the same statement.
func (r *ServerEntryRepository) DeleteBySID(ctx context.Context, sid string, ownerID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("sid = ? AND created_by = ?", sid, ownerID).
		Delete(&models.ServerEntryModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to delete server entry by SID", "sid", sid, "error", result.Error)
		return false, fmt.Errorf("failed to delete server entry: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return false, nil
	}

	r.logger.Infow("server entry deleted successfully", "sid", sid, "owner_id", ownerID)
	return true, nil
}
