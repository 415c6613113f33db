package usecases

import (
	"context"

	"github.com/orris-inc/passage/internal/domain/subscription"
	"github.com/orris-inc/passage/internal/shared/biztime"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type ActivateCommand struct {
	SubscriptionID uint
	UserID         uint
}

type ActivateUseCase struct {
	txManager        TransactionRunner
	subscriptionRepo subscription.Repository
	familySync       FamilySyncDispatcher
	logger           logger.Interface
}

func NewActivateUseCase(
	txManager TransactionRunner,
	subscriptionRepo subscription.Repository,
	familySync FamilySyncDispatcher,
	logger logger.Interface,
) *ActivateUseCase {
	return &ActivateUseCase{
		txManager:        txManager,
		subscriptionRepo: subscriptionRepo,
		familySync:       familySync,
		logger:           logger,
	}
}

func (uc *ActivateUseCase) Execute(ctx context.Context, cmd ActivateCommand) (*subscription.Subscription, error) {
	var sub *subscription.Subscription

	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		sub, err = uc.subscriptionRepo.GetByIDForUpdate(ctx, cmd.SubscriptionID)
		if err != nil {
			return err
		}
		if err := sub.Activate(cmd.UserID, biztime.NowUTC()); err != nil {
			return err
		}
		return uc.subscriptionRepo.Update(ctx, sub)
	})
	if err != nil {
		uc.logger.Warnw("activation failed", "error", err, "subscription_id", cmd.SubscriptionID, "user_id", cmd.UserID)
		return nil, err
	}

	uc.logger.Infow("subscription activated",
		"subscription_id", sub.ID(),
		"user_id", sub.UserID(),
		"expires_at", sub.ExpiresAt(),
	)

	dispatchFamilySync(ctx, uc.familySync, sub.UserID())
	return sub, nil
}
