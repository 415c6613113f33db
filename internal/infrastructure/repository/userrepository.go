package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/passage/internal/domain/user"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/models"
	"github.com/orris-inc/passage/internal/shared/db"
	"github.com/orris-inc/passage/internal/shared/logger"
)

// userMutableColumns excludes balance, which only changes through Debit and Credit.
var userMutableColumns = []string{"username", "is_banned", "parent_id", "referrer_id", "started_at", "trial_used", "updated_at"}

type UserRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewUserRepository(db *gorm.DB, logger logger.Interface) user.Repository {
	return &UserRepositoryImpl{db: db, logger: logger}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, u *user.User) error {
	model := mappers.UserToModel(u)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create user", "telegram_id", u.TelegramID(), "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}
	return u.SetID(model.ID)
}

func (r *UserRepositoryImpl) Update(ctx context.Context, u *user.User) error {
	model := mappers.UserToModel(u)
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.UserModel{ID: u.ID()}).
		Select(userMutableColumns).
		Updates(model)
	if result.Error != nil {
		r.logger.Errorw("failed to update user", "user_id", u.ID(), "error", result.Error)
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	return nil
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id uint) (*user.User, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).Where("id = ?", id))
}

func (r *UserRepositoryImpl) GetByIDForUpdate(ctx context.Context, id uint) (*user.User, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).Scopes(db.ForUpdate()).Where("id = ?", id))
}

func (r *UserRepositoryImpl) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.first(db.GetTxFromContext(ctx, r.db).Where("username = ?", username))
}

func (r *UserRepositoryImpl) first(q *gorm.DB) (*user.User, error) {
	var model models.UserModel
	if err := q.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return mappers.UserToEntity(&model), nil
}

func (r *UserRepositoryImpl) ListChildren(ctx context.Context, parentID uint) ([]*user.User, error) {
	var list []*models.UserModel
	if err := db.GetTxFromContext(ctx, r.db).Where("parent_id = ?", parentID).Order("id").Find(&list).Error; err != nil {
		r.logger.Errorw("failed to list family members", "parent_id", parentID, "error", err)
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	users := make([]*user.User, 0, len(list))
	for _, m := range list {
		users = append(users, mappers.UserToEntity(m))
	}
	return users, nil
}

// Debit is a single conditional statement so two concurrent debits can never
// both pass against a balance that covers only one.
func (r *UserRepositoryImpl) Debit(ctx context.Context, id uint, amount int64) error {
	if amount < 0 {
		return user.ErrInvalidAmount
	}
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.UserModel{}).
		Where("id = ? AND balance >= ?", id, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		r.logger.Errorw("failed to debit balance", "user_id", id, "amount", amount, "error", result.Error)
		return fmt.Errorf("failed to debit balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return user.ErrInsufficientBalance
	}
	return nil
}

func (r *UserRepositoryImpl) Credit(ctx context.Context, id uint, amount int64) error {
	if amount <= 0 {
		return user.ErrInvalidAmount
	}
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.UserModel{}).
		Where("id = ?", id).
		UpdateColumn("balance", gorm.Expr("balance + ?", amount))
	if result.Error != nil {
		r.logger.Errorw("failed to credit balance", "user_id", id, "amount", amount, "error", result.Error)
		return fmt.Errorf("failed to credit balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}
