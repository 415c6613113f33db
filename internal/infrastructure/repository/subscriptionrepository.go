package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/orris-inc/passage/internal/domain/subscription"
	vo "github.com/orris-inc/passage/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/models"
	"github.com/orris-inc/passage/internal/shared/db"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SubscriptionMapper
	logger logger.Interface
}

func NewSubscriptionRepository(db *gorm.DB, logger logger.Interface) subscription.Repository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mappers.NewSubscriptionMapper(),
		logger: logger,
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, sub *subscription.Subscription) error {
	model, err := r.mapper.ToModel(sub)
	if err != nil {
		return fmt.Errorf("failed to map subscription entity: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create subscription in database", "user_id", model.UserID, "error", err)
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	if err := sub.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set subscription ID: %w", err)
	}

	r.logger.Debugw("subscription created", "subscription_id", model.ID, "user_id", model.UserID, "plan_id", model.PlanID, "origin", model.Origin)
	return nil
}

func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, sub *subscription.Subscription) error {
	model, err := r.mapper.ToModel(sub)
	if err != nil {
		return fmt.Errorf("failed to map subscription entity: %w", err)
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("id = ?", model.ID).
		Select("*").
		Omit("id", "created_at", "deleted_at").
		Updates(model)
	if result.Error != nil {
		r.logger.Errorw("failed to update subscription", "subscription_id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return subscription.ErrSubscriptionNotFound
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) Delete(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).Delete(&models.SubscriptionModel{}, id)
	if result.Error != nil {
		r.logger.Errorw("failed to delete subscription", "subscription_id", id, "error", result.Error)
		return fmt.Errorf("failed to delete subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return subscription.ErrSubscriptionNotFound
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).Where("id = ?", id))
}

func (r *SubscriptionRepositoryImpl) GetByIDForUpdate(ctx context.Context, id uint) (*subscription.Subscription, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).Scopes(db.ForUpdate()).Where("id = ?", id))
}

func (r *SubscriptionRepositoryImpl) GetByAccessToken(ctx context.Context, token string) (*subscription.Subscription, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).Where("access_token = ?", token))
}

func (r *SubscriptionRepositoryImpl) GetByUUID(ctx context.Context, uuid string) (*subscription.Subscription, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).Where("uuid = ?", uuid))
}

func (r *SubscriptionRepositoryImpl) ListByUser(ctx context.Context, userID uint) ([]*subscription.Subscription, error) {
	return r.find(db.GetTxFromContext(ctx, r.db).Where("user_id = ?", userID).Order("id"))
}

func (r *SubscriptionRepositoryImpl) ListLiveByUser(ctx context.Context, userID uint, now time.Time) ([]*subscription.Subscription, error) {
	return r.find(db.GetTxFromContext(ctx, r.db).
		Scopes(db.LiveAt(now)).
		Where("user_id = ?", userID).
		Order("expires_at DESC, id DESC"))
}

func (r *SubscriptionRepositoryImpl) FindActiveByUserAndPlan(ctx context.Context, userID, planID uint) (*subscription.Subscription, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).
		Scopes(db.ForUpdate()).
		Where("user_id = ? AND plan_id = ? AND status = ? AND origin <> ?",
			userID, planID, vo.StatusActive.String(), vo.OriginFamilySync.String()).
		Order("expires_at DESC, id DESC"))
}

func (r *SubscriptionRepositoryImpl) ListByUserAndOrigin(ctx context.Context, userID uint, origin vo.Origin) ([]*subscription.Subscription, error) {
	return r.find(db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND origin = ?", userID, origin.String()).
		Order("id"))
}

func (r *SubscriptionRepositoryImpl) ListAutoRenewDue(ctx context.Context, now, deadline time.Time) ([]*subscription.Subscription, error) {
	return r.find(db.GetTxFromContext(ctx, r.db).
		Scopes(db.LiveAt(now)).
		Where("auto_renew = ? AND expires_at <= ?", true, deadline).
		Order("expires_at"))
}

func (r *SubscriptionRepositoryImpl) ListLive(ctx context.Context, now time.Time) ([]*subscription.Subscription, error) {
	return r.find(db.GetTxFromContext(ctx, r.db).Scopes(db.LiveAt(now)).Order("id"))
}

func (r *SubscriptionRepositoryImpl) first(q *gorm.DB) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	if err := q.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrSubscriptionNotFound
		}
		r.logger.Errorw("failed to get subscription", "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *SubscriptionRepositoryImpl) find(q *gorm.DB) ([]*subscription.Subscription, error) {
	var list []*models.SubscriptionModel
	if err := q.Find(&list).Error; err != nil {
		r.logger.Errorw("failed to list subscriptions", "error", err)
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return r.mapper.ToEntities(list)
}
