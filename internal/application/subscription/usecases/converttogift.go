package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/passage/internal/domain/subscription"
	"github.com/orris-inc/passage/internal/shared/biztime"
	"github.com/orris-inc/passage/internal/shared/id"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type ConvertToGiftCommand struct {
	SubscriptionID uint
	UserID         uint
}

// ConvertToGiftUseCase turns a pending subscription into a single-use gift
// code carrying the same plan and whole days.
type ConvertToGiftUseCase struct {
	txManager        TransactionRunner
	subscriptionRepo subscription.Repository
	giftCodeRepo     subscription.GiftCodeRepository
	codePrefix       string
	logger           logger.Interface
}

func NewConvertToGiftUseCase(
	txManager TransactionRunner,
	subscriptionRepo subscription.Repository,
	giftCodeRepo subscription.GiftCodeRepository,
	codePrefix string,
	logger logger.Interface,
) *ConvertToGiftUseCase {
	return &ConvertToGiftUseCase{
		txManager:        txManager,
		subscriptionRepo: subscriptionRepo,
		giftCodeRepo:     giftCodeRepo,
		codePrefix:       codePrefix,
		logger:           logger,
	}
}

func (uc *ConvertToGiftUseCase) Execute(ctx context.Context, cmd ConvertToGiftCommand) (*subscription.GiftCode, error) {
	var gift *subscription.GiftCode

	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sub, err := uc.subscriptionRepo.GetByIDForUpdate(ctx, cmd.SubscriptionID)
		if err != nil {
			return err
		}
		days, err := sub.GiftDays(cmd.UserID)
		if err != nil {
			return err
		}

		code, err := id.NewGiftCode(uc.codePrefix)
		if err != nil {
			return err
		}
		gift, err = subscription.NewGiftCode(code, sub.PlanID(), days, cmd.UserID, biztime.NowUTC())
		if err != nil {
			return err
		}

		if err := uc.subscriptionRepo.Delete(ctx, sub.ID()); err != nil {
			return fmt.Errorf("failed to delete subscription: %w", err)
		}
		if err := uc.giftCodeRepo.Create(ctx, gift); err != nil {
			return fmt.Errorf("failed to create gift code: %w", err)
		}
		return nil
	})
	if err != nil {
		uc.logger.Warnw("gift conversion failed", "error", err, "subscription_id", cmd.SubscriptionID, "user_id", cmd.UserID)
		return nil, err
	}

	uc.logger.Infow("subscription converted to gift",
		"subscription_id", cmd.SubscriptionID,
		"user_id", cmd.UserID,
		"code", gift.Code(),
		"days", gift.DurationDays(),
	)
	return gift, nil
}
