package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/orris-inc/passage/internal/domain/subscription"
	vo "github.com/orris-inc/passage/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/passage/internal/domain/user"
	"github.com/orris-inc/passage/internal/shared/biztime"
	"github.com/orris-inc/passage/internal/shared/id"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type RedeemGiftCommand struct {
	UserID uint
	Code   string
}

// RedeemGiftUseCase trades a gift code for a pending subscription. The code
// row stays locked from check to mark so a code is redeemed at most once.
type RedeemGiftUseCase struct {
	txManager        TransactionRunner
	userRepo         user.Repository
	giftCodeRepo     subscription.GiftCodeRepository
	subscriptionRepo subscription.Repository
	logger           logger.Interface
}

func NewRedeemGiftUseCase(
	txManager TransactionRunner,
	userRepo user.Repository,
	giftCodeRepo subscription.GiftCodeRepository,
	subscriptionRepo subscription.Repository,
	logger logger.Interface,
) *RedeemGiftUseCase {
	return &RedeemGiftUseCase{
		txManager:        txManager,
		userRepo:         userRepo,
		giftCodeRepo:     giftCodeRepo,
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

func (uc *RedeemGiftUseCase) Execute(ctx context.Context, cmd RedeemGiftCommand) (*subscription.Subscription, error) {
	var sub *subscription.Subscription
	code := id.NormalizeCode(cmd.Code)

	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		now := biztime.NowUTC()

		redeemer, err := uc.userRepo.GetByID(ctx, cmd.UserID)
		if err != nil {
			return err
		}

		gift, err := uc.giftCodeRepo.GetByCodeForUpdate(ctx, code)
		if errors.Is(err, subscription.ErrGiftCodeNotFound) {
			return subscription.ErrInvalidOrExpiredCode
		}
		if err != nil {
			return err
		}
		if err := gift.MarkRedeemed(redeemer.ID(), now); err != nil {
			return err
		}
		if err := uc.giftCodeRepo.MarkRedeemed(ctx, gift.ID(), redeemer.ID(), now); err != nil {
			return err
		}

		sub, err = subscription.NewPendingSubscription(redeemer.ID(), gift.PlanID(),
			subscription.DurationFromDays(gift.DurationDays()), vo.OriginGiftRedemption, now)
		if err != nil {
			return err
		}
		if err := uc.subscriptionRepo.Create(ctx, sub); err != nil {
			return fmt.Errorf("failed to create subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		uc.logger.Warnw("gift redemption failed", "error", err, "user_id", cmd.UserID, "code", code)
		return nil, err
	}

	uc.logger.Infow("gift code redeemed",
		"code", code,
		"user_id", cmd.UserID,
		"subscription_id", sub.ID(),
	)
	return sub, nil
}
