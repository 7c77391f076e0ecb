package mappers

import (
	"fmt"

	"mcprouter/internal/domain/user"
	"mcprouter/internal/infrastructure/persistence/models"
)

// UserMapper handles the conversion between domain entities and persistence models
type UserMapper interface {
	ToEntity(model *models.UserModel) (*user.User, error)
	ToModel(entity *user.User) *models.UserModel
}

type userMapperImpl struct{}

// NewUserMapper creates a new user mapper
func NewUserMapper() UserMapper {
	return &userMapperImpl{}
}

func (m *userMapperImpl) ToEntity(model *models.UserModel) (*user.User, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := user.ReconstructUser(
		model.ID,
		model.SID,
		model.Name,
		model.Email,
		model.EmailVerifiedAt,
		model.LastVerificationEmailSentAt,
		user.Role(model.Role),
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct user entity: %w", err)
	}

	return entity, nil
}

func (m *userMapperImpl) ToModel(entity *user.User) *models.UserModel {
	if entity == nil {
		return nil
	}

	return &models.UserModel{
		ID:                          entity.ID(),
		SID:                         entity.SID(),
		Name:                        entity.Name(),
		Email:                       entity.Email(),
		EmailVerifiedAt:             entity.EmailVerifiedAt(),
		LastVerificationEmailSentAt: entity.LastVerificationEmailSentAt(),
		Role:                        string(entity.Role()),
		CreatedAt:                   entity.CreatedAt(),
		UpdatedAt:                   entity.UpdatedAt(),
	}
}
