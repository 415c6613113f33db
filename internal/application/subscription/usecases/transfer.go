package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/orris-inc/passage/internal/domain/subscription"
	"github.com/orris-inc/passage/internal/domain/user"
	"github.com/orris-inc/passage/internal/shared/biztime"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type TransferCommand struct {
	SubscriptionID uint
	FromUserID     uint
	ToUsername     string
}

// TransferUseCase hands a pending subscription, credential included, to
// another user who has started the bot at least once.
type TransferUseCase struct {
	txManager        TransactionRunner
	userRepo         user.Repository
	subscriptionRepo subscription.Repository
	logger           logger.Interface
}

func NewTransferUseCase(
	txManager TransactionRunner,
	userRepo user.Repository,
	subscriptionRepo subscription.Repository,
	logger logger.Interface,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:        txManager,
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

func (uc *TransferUseCase) Execute(ctx context.Context, cmd TransferCommand) (*subscription.Subscription, error) {
	var sub *subscription.Subscription
	username := strings.TrimPrefix(strings.TrimSpace(cmd.ToUsername), "@")

	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		sub, err = uc.subscriptionRepo.GetByIDForUpdate(ctx, cmd.SubscriptionID)
		if err != nil {
			return err
		}
		if err := sub.EnsureOwner(cmd.FromUserID); err != nil {
			return err
		}
		if !sub.Status().IsPending() {
			return subscription.ErrNotPending
		}

		target, err := uc.userRepo.GetByUsername(ctx, username)
		if errors.Is(err, user.ErrUserNotFound) {
			return subscription.ErrTargetNotFound
		}
		if err != nil {
			return err
		}
		if !target.HasStarted() {
			return subscription.ErrTargetNotFound
		}
		if target.ID() == cmd.FromUserID {
			return user.ErrSelfReference
		}

		if err := sub.TransferTo(cmd.FromUserID, target.ID(), biztime.NowUTC()); err != nil {
			return err
		}
		return uc.subscriptionRepo.Update(ctx, sub)
	})
	if err != nil {
		uc.logger.Warnw("transfer failed", "error", err, "subscription_id", cmd.SubscriptionID, "user_id", cmd.FromUserID)
		return nil, err
	}

	uc.logger.Infow("subscription transferred",
		"subscription_id", sub.ID(),
		"from_user_id", cmd.FromUserID,
		"to_user_id", sub.UserID(),
	)
	return sub, nil
}
