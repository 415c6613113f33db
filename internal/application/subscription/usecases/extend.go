package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/orris-inc/passage/internal/domain/subscription"
	vo "github.com/orris-inc/passage/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/passage/internal/domain/user"
	"github.com/orris-inc/passage/internal/shared/biztime"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type ExtendCommand struct {
	UserID     uint
	DurationID uint
}

type ExtendResult struct {
	Subscription *subscription.Subscription
	// Created is true when no active subscription on the plan existed and a
	// new one was issued instead.
	Created bool
}

// ExtendUseCase prolongs the user's active subscription on the duration's
// plan, restarting from now if it already lapsed. A user whose active
// subscriptions are all on other plans gets a second, independent one.
type ExtendUseCase struct {
	txManager        TransactionRunner
	userRepo         user.Repository
	planRepo         subscription.PlanRepository
	subscriptionRepo subscription.Repository
	familySync       FamilySyncDispatcher
	logger           logger.Interface
}

func NewExtendUseCase(
	txManager TransactionRunner,
	userRepo user.Repository,
	planRepo subscription.PlanRepository,
	subscriptionRepo subscription.Repository,
	familySync FamilySyncDispatcher,
	logger logger.Interface,
) *ExtendUseCase {
	return &ExtendUseCase{
		txManager:        txManager,
		userRepo:         userRepo,
		planRepo:         planRepo,
		subscriptionRepo: subscriptionRepo,
		familySync:       familySync,
		logger:           logger,
	}
}

func (uc *ExtendUseCase) Execute(ctx context.Context, cmd ExtendCommand) (*ExtendResult, error) {
	result := &ExtendResult{}

	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		now := biztime.NowUTC()

		buyer, plan, duration, err := chargeForDuration(ctx, uc.userRepo, uc.planRepo, cmd.UserID, cmd.DurationID)
		if err != nil {
			return err
		}
		span := subscription.DurationFromDays(duration.Days())

		existing, err := uc.subscriptionRepo.FindActiveByUserAndPlan(ctx, buyer.ID(), plan.ID())
		switch {
		case err == nil:
			if err := existing.Extend(span, now); err != nil {
				return err
			}
			if err := uc.subscriptionRepo.Update(ctx, existing); err != nil {
				return fmt.Errorf("failed to update subscription: %w", err)
			}
			result.Subscription = existing
			return nil
		case !errors.Is(err, subscription.ErrSubscriptionNotFound):
			return err
		}

		sub, err := subscription.NewActiveSubscription(buyer.ID(), plan.ID(), nil, now.Add(span), vo.OriginUserPurchase, now)
		if err != nil {
			return err
		}
		if err := uc.subscriptionRepo.Create(ctx, sub); err != nil {
			return fmt.Errorf("failed to create subscription: %w", err)
		}
		result.Subscription = sub
		result.Created = true
		return nil
	})
	if err != nil {
		uc.logger.Warnw("extension failed", "error", err, "user_id", cmd.UserID, "duration_id", cmd.DurationID)
		return nil, err
	}

	uc.logger.Infow("subscription extended",
		"subscription_id", result.Subscription.ID(),
		"user_id", cmd.UserID,
		"created", result.Created,
		"expires_at", result.Subscription.ExpiresAt(),
	)

	dispatchFamilySync(ctx, uc.familySync, cmd.UserID)
	return result, nil
}
