package usecases

import (
	"context"

	"github.com/orris-inc/passage/internal/domain/subscription"
	"github.com/orris-inc/passage/internal/shared/biztime"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type ToggleAutoRenewCommand struct {
	SubscriptionID uint
	UserID         uint
}

type ToggleAutoRenewUseCase struct {
	txManager        TransactionRunner
	subscriptionRepo subscription.Repository
	logger           logger.Interface
}

func NewToggleAutoRenewUseCase(
	txManager TransactionRunner,
	subscriptionRepo subscription.Repository,
	logger logger.Interface,
) *ToggleAutoRenewUseCase {
	return &ToggleAutoRenewUseCase{
		txManager:        txManager,
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

// Execute flips the flag and returns its new value.
func (uc *ToggleAutoRenewUseCase) Execute(ctx context.Context, cmd ToggleAutoRenewCommand) (bool, error) {
	var enabled bool

	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sub, err := uc.subscriptionRepo.GetByIDForUpdate(ctx, cmd.SubscriptionID)
		if err != nil {
			return err
		}
		enabled, err = sub.ToggleAutoRenew(cmd.UserID, biztime.NowUTC())
		if err != nil {
			return err
		}
		return uc.subscriptionRepo.Update(ctx, sub)
	})
	if err != nil {
		uc.logger.Warnw("failed to toggle auto renew", "error", err, "subscription_id", cmd.SubscriptionID)
		return false, err
	}

	uc.logger.Infow("auto renew toggled", "subscription_id", cmd.SubscriptionID, "auto_renew", enabled)
	return enabled, nil
}
