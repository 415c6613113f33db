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

type StartTrialCommand struct {
	UserID uint
}

// TrialSettings selects the plan and length of the one-off trial.
type TrialSettings struct {
	PlanID uint
	Days   int
}

// StartTrialUseCase grants each user a single active trial subscription.
type StartTrialUseCase struct {
	txManager        TransactionRunner
	userRepo         user.Repository
	planRepo         subscription.PlanRepository
	subscriptionRepo subscription.Repository
	settings         TrialSettings
	logger           logger.Interface
}

func NewStartTrialUseCase(
	txManager TransactionRunner,
	userRepo user.Repository,
	planRepo subscription.PlanRepository,
	subscriptionRepo subscription.Repository,
	settings TrialSettings,
	logger logger.Interface,
) *StartTrialUseCase {
	return &StartTrialUseCase{
		txManager:        txManager,
		userRepo:         userRepo,
		planRepo:         planRepo,
		subscriptionRepo: subscriptionRepo,
		settings:         settings,
		logger:           logger,
	}
}

func (uc *StartTrialUseCase) Execute(ctx context.Context, cmd StartTrialCommand) (*subscription.Subscription, error) {
	if uc.settings.PlanID == 0 || uc.settings.Days <= 0 {
		return nil, subscription.ErrTrialPlanNotConfigured
	}

	var sub *subscription.Subscription
	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		now := biztime.NowUTC()

		u, err := uc.userRepo.GetByIDForUpdate(ctx, cmd.UserID)
		if err != nil {
			return err
		}
		if u.IsBanned() {
			return user.ErrUserBanned
		}
		if err := u.MarkTrialUsed(now); err != nil {
			return err
		}

		plan, err := uc.planRepo.GetByID(ctx, uc.settings.PlanID)
		if err != nil {
			return err
		}

		sub, err = subscription.NewActiveSubscription(u.ID(), plan.ID(), nil, now.Add(biztime.Days(uc.settings.Days)), vo.OriginTrial, now)
		if err != nil {
			return err
		}
		if err := uc.subscriptionRepo.Create(ctx, sub); err != nil {
			return fmt.Errorf("failed to create subscription: %w", err)
		}
		return uc.userRepo.Update(ctx, u)
	})
	if err != nil {
		uc.logger.Warnw("trial start failed", "error", err, "user_id", cmd.UserID)
		return nil, err
	}

	uc.logger.Infow("trial started", "subscription_id", sub.ID(), "user_id", sub.UserID(), "expires_at", sub.ExpiresAt())
	return sub, nil
}
