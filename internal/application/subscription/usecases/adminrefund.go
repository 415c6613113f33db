package usecases

import (
	"context"

	"github.com/orris-inc/passage/internal/domain/user"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type AdminRefundCommand struct {
	UserID uint
	Amount int64
	Reason string
}

type AdminRefundUseCase struct {
	userRepo user.Repository
	logger   logger.Interface
}

func NewAdminRefundUseCase(userRepo user.Repository, logger logger.Interface) *AdminRefundUseCase {
	return &AdminRefundUseCase{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Execute credits the user's balance. Auditing is left to the caller.
func (uc *AdminRefundUseCase) Execute(ctx context.Context, cmd AdminRefundCommand) error {
	if err := uc.userRepo.Credit(ctx, cmd.UserID, cmd.Amount); err != nil {
		uc.logger.Errorw("failed to refund balance", "error", err, "user_id", cmd.UserID, "amount", cmd.Amount)
		return err
	}

	uc.logger.Infow("balance refunded",
		"user_id", cmd.UserID,
		"amount", cmd.Amount,
		"reason", cmd.Reason,
	)
	return nil
}
