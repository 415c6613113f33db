package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/orris-inc/passage/internal/domain/subscription"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/models"
	"github.com/orris-inc/passage/internal/shared/db"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type GiftCodeRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewGiftCodeRepository(db *gorm.DB, logger logger.Interface) subscription.GiftCodeRepository {
	return &GiftCodeRepositoryImpl{db: db, logger: logger}
}

func (r *GiftCodeRepositoryImpl) Create(ctx context.Context, code *subscription.GiftCode) error {
	model := mappers.GiftCodeToModel(code)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create gift code", "created_by", code.CreatedBy(), "error", err)
		return fmt.Errorf("failed to create gift code: %w", err)
	}
	return code.SetID(model.ID)
}

func (r *GiftCodeRepositoryImpl) GetByCodeForUpdate(ctx context.Context, code string) (*subscription.GiftCode, error) {
	var model models.GiftCodeModel
	err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.ForUpdate()).
		Where("code = ?", code).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrGiftCodeNotFound
		}
		return nil, fmt.Errorf("failed to get gift code: %w", err)
	}
	return mappers.GiftCodeToEntity(&model), nil
}

func (r *GiftCodeRepositoryImpl) MarkRedeemed(ctx context.Context, id, userID uint, at time.Time) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.GiftCodeModel{}).
		Where("id = ? AND redeemed_at IS NULL", id).
		Updates(map[string]interface{}{
			"redeemed_by": userID,
			"redeemed_at": at,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to mark gift code redeemed", "gift_code_id", id, "error", result.Error)
		return fmt.Errorf("failed to mark gift code redeemed: %w", result.Error)
	}
	if result.RowsAffected != 1 {
		return subscription.ErrAlreadyRedeemed
	}
	return nil
}
