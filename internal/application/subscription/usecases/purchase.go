package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/passage/internal/domain/subscription"
	vo "github.com/orris-inc/passage/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/passage/internal/domain/user"
	"github.com/orris-inc/passage/internal/shared/biztime"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type PurchaseCommand struct {
	UserID     uint
	DurationID uint
}

// PurchaseUseCase debits the buyer and issues a pending subscription whose
// validity starts on activation.
type PurchaseUseCase struct {
	txManager        TransactionRunner
	userRepo         user.Repository
	planRepo         subscription.PlanRepository
	subscriptionRepo subscription.Repository
	logger           logger.Interface
}

func NewPurchaseUseCase(
	txManager TransactionRunner,
	userRepo user.Repository,
	planRepo subscription.PlanRepository,
	subscriptionRepo subscription.Repository,
	logger logger.Interface,
) *PurchaseUseCase {
	return &PurchaseUseCase{
		txManager:        txManager,
		userRepo:         userRepo,
		planRepo:         planRepo,
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

func (uc *PurchaseUseCase) Execute(ctx context.Context, cmd PurchaseCommand) (*subscription.Subscription, error) {
	var sub *subscription.Subscription

	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		now := biztime.NowUTC()

		buyer, plan, duration, err := chargeForDuration(ctx, uc.userRepo, uc.planRepo, cmd.UserID, cmd.DurationID)
		if err != nil {
			return err
		}

		sub, err = subscription.NewPendingSubscription(buyer.ID(), plan.ID(),
			subscription.DurationFromDays(duration.Days()), vo.OriginUserPurchase, now)
		if err != nil {
			return err
		}
		if err := uc.subscriptionRepo.Create(ctx, sub); err != nil {
			return fmt.Errorf("failed to create subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		uc.logger.Warnw("purchase failed", "error", err, "user_id", cmd.UserID, "duration_id", cmd.DurationID)
		return nil, err
	}

	uc.logger.Infow("subscription purchased",
		"subscription_id", sub.ID(),
		"user_id", sub.UserID(),
		"plan_id", sub.PlanID(),
	)
	return sub, nil
}

// chargeForDuration locks the buyer, checks the plan and debits the price.
// It must run inside a transaction.
func chargeForDuration(
	ctx context.Context,
	userRepo user.Repository,
	planRepo subscription.PlanRepository,
	userID, durationID uint,
) (*user.User, *subscription.Plan, *subscription.PlanDuration, error) {
	buyer, err := userRepo.GetByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, nil, nil, err
	}

	duration, err := planRepo.GetDuration(ctx, durationID)
	if err != nil {
		return nil, nil, nil, err
	}
	plan, err := planRepo.GetByID(ctx, duration.PlanID())
	if err != nil {
		return nil, nil, nil, err
	}
	if !plan.IsActive() {
		return nil, nil, nil, subscription.ErrPlanInactive
	}

	if err := buyer.EnsureCanPay(duration.Price()); err != nil {
		return nil, nil, nil, err
	}
	if err := userRepo.Debit(ctx, buyer.ID(), duration.Price()); err != nil {
		return nil, nil, nil, err
	}
	return buyer, plan, duration, nil
}
