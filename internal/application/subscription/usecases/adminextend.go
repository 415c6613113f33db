package usecases

import (
	"context"

	"github.com/orris-inc/passage/internal/domain/subscription"
	"github.com/orris-inc/passage/internal/shared/biztime"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type AdminExtendCommand struct {
	SubscriptionID uint
	Days           int
}

type AdminExtendUseCase struct {
	txManager        TransactionRunner
	subscriptionRepo subscription.Repository
	familySync       FamilySyncDispatcher
	logger           logger.Interface
}

func NewAdminExtendUseCase(
	txManager TransactionRunner,
	subscriptionRepo subscription.Repository,
	familySync FamilySyncDispatcher,
	logger logger.Interface,
) *AdminExtendUseCase {
	return &AdminExtendUseCase{
		txManager:        txManager,
		subscriptionRepo: subscriptionRepo,
		familySync:       familySync,
		logger:           logger,
	}
}

func (uc *AdminExtendUseCase) Execute(ctx context.Context, cmd AdminExtendCommand) (*subscription.Subscription, error) {
	if cmd.Days <= 0 {
		return nil, subscription.ErrInvalidDuration
	}

	var sub *subscription.Subscription
	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		sub, err = uc.subscriptionRepo.GetByIDForUpdate(ctx, cmd.SubscriptionID)
		if err != nil {
			return err
		}
		if err := sub.Extend(biztime.Days(cmd.Days), biztime.NowUTC()); err != nil {
			return err
		}
		return uc.subscriptionRepo.Update(ctx, sub)
	})
	if err != nil {
		uc.logger.Errorw("failed to extend subscription", "error", err, "subscription_id", cmd.SubscriptionID)
		return nil, err
	}

	uc.logger.Infow("subscription extended by admin",
		"subscription_id", sub.ID(),
		"days", cmd.Days,
		"expires_at", sub.ExpiresAt(),
	)

	dispatchFamilySync(ctx, uc.familySync, sub.UserID())
	return sub, nil
}
