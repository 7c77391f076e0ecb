package mappers

import (
	"encoding/json"
	"fmt"

	"mcprouter/internal/domain/user"
	"mcprouter/internal/infrastructure/persistence/models"
)

// PasskeyCredentialMapper handles the conversion between domain entities and persistence models
type PasskeyCredentialMapper interface {
	ToEntity(model *models.PasskeyCredentialModel) (*user.PasskeyCredential, error)
	ToModel(entity *user.PasskeyCredential) (*models.PasskeyCredentialModel, error)
	ToEntities(models []*models.PasskeyCredentialModel) ([]*user.PasskeyCredential, error)
}

type passkeyCredentialMapperImpl struct{}

// NewPasskeyCredentialMapper creates a new passkey credential mapper
func NewPasskeyCredentialMapper() PasskeyCredentialMapper {
	return &passkeyCredentialMapperImpl{}
}

func (m *passkeyCredentialMapperImpl) ToEntity(model *models.PasskeyCredentialModel) (*user.PasskeyCredential, error) {
	if model == nil {
		return nil, nil
	}

	var transports []string
	if len(model.Transports) > 0 {
		if err := json.Unmarshal(model.Transports, &transports); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transports: %w", err)
		}
	}

	credential, err := user.ReconstructPasskeyCredential(
		model.ID,
		model.SID,
		model.UserID,
		model.CredentialID,
		model.PublicKey,
		model.AttestationType,
		model.AAGUID,
		model.SignCount,
		model.BackupEligible,
		model.BackupState,
		transports,
		model.DeviceName,
		model.LastUsedAt,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct passkey credential entity: %w", err)
	}

	return credential, nil
}

func (m *passkeyCredentialMapperImpl) ToModel(entity *user.PasskeyCredential) (*models.PasskeyCredentialModel, error) {
	if entity == nil {
		return nil, nil
	}

	var transportsJSON []byte
	if len(entity.Transports()) > 0 {
		var err error
		transportsJSON, err = json.Marshal(entity.Transports())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal transports: %w", err)
		}
	}

	return &models.PasskeyCredentialModel{
		ID:              entity.ID(),
		SID:             entity.SID(),
		UserID:          entity.UserID(),
		CredentialID:    entity.CredentialID(),
		PublicKey:       entity.PublicKey(),
		AttestationType: entity.AttestationType(),
		AAGUID:          entity.AAGUID(),
		SignCount:       entity.SignCount(),
		BackupEligible:  entity.BackupEligible(),
		BackupState:     entity.BackupState(),
		Transports:      transportsJSON,
		DeviceName:      entity.DeviceName(),
		LastUsedAt:      entity.LastUsedAt(),
		CreatedAt:       entity.CreatedAt(),
		UpdatedAt:       entity.UpdatedAt(),
	}, nil
}

func (m *passkeyCredentialMapperImpl) ToEntities(credentialModels []*models.PasskeyCredentialModel) ([]*user.PasskeyCredential, error) {
	entities := make([]*user.PasskeyCredential, 0, len(credentialModels))
	for _, model := range credentialModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
