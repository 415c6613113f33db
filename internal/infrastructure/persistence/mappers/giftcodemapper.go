package mappers

import (
	"github.com/orris-inc/passage/internal/domain/subscription"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/models"
)

func GiftCodeToEntity(model *models.GiftCodeModel) *subscription.GiftCode {
	return subscription.ReconstructGiftCode(
		model.ID,
		model.Code,
		model.PlanID,
		model.DurationDays,
		model.CreatedBy,
		model.RedeemedBy,
		utcPtr(model.RedeemedAt),
		model.IsActive,
		utcPtr(model.ExpiresAt),
		model.CreatedAt.UTC(),
	)
}

func GiftCodeToModel(entity *subscription.GiftCode) *models.GiftCodeModel {
	return &models.GiftCodeModel{
		ID:           entity.ID(),
		Code:         entity.Code(),
		PlanID:       entity.PlanID(),
		DurationDays: entity.DurationDays(),
		CreatedBy:    entity.CreatedBy(),
		RedeemedBy:   entity.RedeemedBy(),
		RedeemedAt:   entity.RedeemedAt(),
		IsActive:     entity.IsActive(),
		ExpiresAt:    entity.ExpiresAt(),
		CreatedAt:    entity.CreatedAt(),
	}
}
