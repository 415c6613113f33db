package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orris-inc/passage/internal/domain/payment"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/models"
	"github.com/orris-inc/passage/internal/shared/db"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type PaymentRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewPaymentRepository(db *gorm.DB, logger logger.Interface) payment.Repository {
	return &PaymentRepositoryImpl{db: db, logger: logger}
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, p *payment.Payment) error {
	model := &models.PaymentModel{
		UserID:            p.UserID(),
		Amount:            p.Amount(),
		Method:            p.Method(),
		ExternalReference: p.ExternalReference(),
		CreatedAt:         p.CreatedAt(),
	}

	result := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "external_reference"}}, DoNothing: true}).
		Create(model)
	if result.Error != nil {
		r.logger.Errorw("failed to record payment", "user_id", p.UserID(), "reference", p.ExternalReference(), "error", result.Error)
		return fmt.Errorf("failed to record payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return payment.ErrDuplicatePayment
	}
	return p.SetID(model.ID)
}
