package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/passage/internal/domain/family"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/models"
	"github.com/orris-inc/passage/internal/shared/db"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type FamilyInviteRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewFamilyInviteRepository(db *gorm.DB, logger logger.Interface) family.InviteRepository {
	return &FamilyInviteRepositoryImpl{db: db, logger: logger}
}

func (r *FamilyInviteRepositoryImpl) Create(ctx context.Context, invite *family.Invite) error {
	model := mappers.InviteToModel(invite)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create family invite", "parent_id", invite.ParentID(), "error", err)
		return fmt.Errorf("failed to create family invite: %w", err)
	}
	return invite.SetID(model.ID)
}

func (r *FamilyInviteRepositoryImpl) GetByCodeForUpdate(ctx context.Context, code string) (*family.Invite, error) {
	var model models.FamilyInviteModel
	err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.ForUpdate()).
		Where("code = ?", code).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, family.ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get family invite: %w", err)
	}
	return mappers.InviteToEntity(&model), nil
}

func (r *FamilyInviteRepositoryImpl) IncrementUse(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.FamilyInviteModel{}).
		Where("id = ? AND used_count < max_uses", id).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to consume family invite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return family.ErrInvalidOrExpiredCode
	}
	return nil
}

func (r *FamilyInviteRepositoryImpl) ListByParent(ctx context.Context, parentID uint) ([]*family.Invite, error) {
	var list []*models.FamilyInviteModel
	if err := db.GetTxFromContext(ctx, r.db).Where("parent_id = ?", parentID).Order("id").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list family invites: %w", err)
	}
	invites := make([]*family.Invite, 0, len(list))
	for _, m := range list {
		invites = append(invites, mappers.InviteToEntity(m))
	}
	return invites, nil
}
