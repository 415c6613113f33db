package mappers

import (
	"github.com/orris-inc/passage/internal/domain/family"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/models"
)

func InviteToEntity(model *models.FamilyInviteModel) *family.Invite {
	return family.ReconstructInvite(
		model.ID,
		model.Code,
		model.ParentID,
		model.MaxUses,
		model.UsedCount,
		model.ExpiresAt.UTC(),
		model.CreatedAt.UTC(),
	)
}

func InviteToModel(entity *family.Invite) *models.FamilyInviteModel {
	return &models.FamilyInviteModel{
		ID:        entity.ID(),
		Code:      entity.Code(),
		ParentID:  entity.ParentID(),
		MaxUses:   entity.MaxUses(),
		UsedCount: entity.UsedCount(),
		ExpiresAt: entity.ExpiresAt(),
		CreatedAt: entity.CreatedAt(),
	}
}
