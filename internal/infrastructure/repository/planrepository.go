package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/passage/internal/domain/subscription"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/models"
	"github.com/orris-inc/passage/internal/shared/db"
)

type PlanRepositoryImpl struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) subscription.PlanRepository {
	return &PlanRepositoryImpl{db: db}
}

func (r *PlanRepositoryImpl) GetByID(ctx context.Context, id uint) (*subscription.Plan, error) {
	var model models.PlanModel
	err := db.GetTxFromContext(ctx, r.db).
		Preload("Durations", func(q *gorm.DB) *gorm.DB { return q.Order("days") }).
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return mappers.PlanToEntity(&model)
}

func (r *PlanRepositoryImpl) GetDuration(ctx context.Context, durationID uint) (*subscription.PlanDuration, error) {
	var model models.PlanDurationModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, durationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrDurationNotFound
		}
		return nil, fmt.Errorf("failed to get plan duration: %w", err)
	}
	return mappers.PlanDurationToEntity(&model)
}
