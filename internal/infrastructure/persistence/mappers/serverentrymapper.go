package mappers

import (
	"fmt"

	"mcprouter/internal/domain/serverentry"
	"mcprouter/internal/infrastructure/persistence/models"
)

// ServerEntryMapper handles the conversion between domain entities and persistence models
type ServerEntryMapper interface {
	ToEntity(model *models.ServerEntryModel) (*serverentry.Entry, error)
	ToModel(entity *serverentry.Entry) *models.ServerEntryModel
	ToEntities(models []*models.ServerEntryModel) ([]*serverentry.Entry, error)
}

type serverEntryMapperImpl struct{}

// NewServerEntryMapper creates a new server entry mapper
func NewServerEntryMapper() ServerEntryMapper {
	return &serverEntryMapperImpl{}
}

func (m *serverEntryMapperImpl) ToEntity(model *models.ServerEntryModel) (*serverentry.Entry, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := serverentry.ReconstructEntry(
		model.ID,
		model.SID,
		model.Name,
		model.EndpointURL,
		model.Description,
		model.DescriptionHTML,
		model.CreatedBy,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct server entry entity: %w", err)
	}

	return entity, nil
}

func (m *serverEntryMapperImpl) ToModel(entity *serverentry.Entry) *models.ServerEntryModel {
	if entity == nil {
		return nil
	}

	return &models.ServerEntryModel{
		ID:              entity.ID(),
		SID:             entity.SID(),
		Name:            entity.Name(),
		EndpointURL:     entity.EndpointURL(),
		Description:     entity.Description(),
		DescriptionHTML: entity.DescriptionHTML(),
		CreatedBy:       entity.CreatedBy(),
		CreatedAt:       entity.CreatedAt(),
		UpdatedAt:       entity.UpdatedAt(),
	}
}

func (m *serverEntryMapperImpl) ToEntities(entryModels []*models.ServerEntryModel) ([]*serverentry.Entry, error) {
	entities := make([]*serverentry.Entry, 0, len(entryModels))
	for _, model := range entryModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
