package mappers

import (
	"time"

	"github.com/orris-inc/passage/internal/domain/user"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/models"
)

func UserToEntity(model *models.UserModel) *user.User {
	return user.ReconstructUser(
		model.ID,
		model.TelegramID,
		model.Username,
		model.Balance,
		model.IsBanned,
		model.ParentID,
		model.ReferrerID,
		utcPtr(model.StartedAt),
		model.TrialUsed,
		model.CreatedAt.UTC(),
		model.UpdatedAt.UTC(),
	)
}

// UserToModel maps every column except balance, which only moves through
// the conditional debit and credit statements.
func UserToModel(entity *user.User) *models.UserModel {
	return &models.UserModel{
		ID:         entity.ID(),
		TelegramID: entity.TelegramID(),
		Username:   entity.Username(),
		Balance:    entity.Balance(),
		IsBanned:   entity.IsBanned(),
		ParentID:   entity.ParentID(),
		ReferrerID: entity.ReferrerID(),
		StartedAt:  entity.StartedAt(),
		TrialUsed:  entity.TrialUsed(),
		CreatedAt:  entity.CreatedAt(),
		UpdatedAt:  entity.UpdatedAt(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
