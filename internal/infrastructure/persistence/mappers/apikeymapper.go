package mappers

import (
	"fmt"

	"mcprouter/internal/domain/apikey"
	"mcprouter/internal/infrastructure/persistence/models"
)

// APIKeyMapper handles the conversion between domain entities and persistence models
type APIKeyMapper interface {
	ToEntity(model *models.APIKeyModel) (*apikey.Key, error)
	ToModel(entity *apikey.Key) *models.APIKeyModel
	ToEntities(models []*models.APIKeyModel) ([]*apikey.Key, error)
}

type apiKeyMapperImpl struct{}

// NewAPIKeyMapper creates a new API key mapper
func NewAPIKeyMapper() APIKeyMapper {
	return &apiKeyMapperImpl{}
}

func (m *apiKeyMapperImpl) ToEntity(model *models.APIKeyModel) (*apikey.Key, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := apikey.ReconstructKey(
		model.ID,
		model.SID,
		model.Name,
		model.Value,
		apikey.KeyType(model.Type),
		model.CreatedBy,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct key entity: %w", err)
	}

	return entity, nil
}

func (m *apiKeyMapperImpl) ToModel(entity *apikey.Key) *models.APIKeyModel {
	if entity == nil {
		return nil
	}

	return &models.APIKeyModel{
		ID:        entity.ID(),
		SID:       entity.SID(),
		Name:      entity.Name(),
		Value:     entity.Value(),
		Type:      string(entity.Type()),
		CreatedBy: entity.CreatedBy(),
		CreatedAt: entity.CreatedAt(),
		UpdatedAt: entity.UpdatedAt(),
	}
}

func (m *apiKeyMapperImpl) ToEntities(keyModels []*models.APIKeyModel) ([]*apikey.Key, error) {
	entities := make([]*apikey.Key, 0, len(keyModels))
	for _, model := range keyModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
