package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/passage/internal/domain/subscription"
	"github.com/orris-inc/passage/internal/domain/user"
	"github.com/orris-inc/passage/internal/shared/biztime"
	"github.com/orris-inc/passage/internal/shared/logger"
)

const renewalLookahead = 24 * time.Hour

// RunAutoRenewalsUseCase renews auto-renewing subscriptions that expire within
// the next day. Each subscription is charged in its own transaction so one
// failure never aborts the sweep.
type RunAutoRenewalsUseCase struct {
	txManager        TransactionRunner
	userRepo         user.Repository
	planRepo         subscription.PlanRepository
	subscriptionRepo subscription.Repository
	renewDays        int
	familySync       FamilySyncDispatcher
	notifier         Notifier
	logger           logger.Interface
}

func NewRunAutoRenewalsUseCase(
	txManager TransactionRunner,
	userRepo user.Repository,
	planRepo subscription.PlanRepository,
	subscriptionRepo subscription.Repository,
	renewDays int,
	familySync FamilySyncDispatcher,
	logger logger.Interface,
) *RunAutoRenewalsUseCase {
	return &RunAutoRenewalsUseCase{
		txManager:        txManager,
		userRepo:         userRepo,
		planRepo:         planRepo,
		subscriptionRepo: subscriptionRepo,
		renewDays:        renewDays,
		familySync:       familySync,
		logger:           logger,
	}
}

// SetNotifier sets the outcome notifier (optional).
func (uc *RunAutoRenewalsUseCase) SetNotifier(notifier Notifier) {
	uc.notifier = notifier
}

func (uc *RunAutoRenewalsUseCase) Execute(ctx context.Context) ([]RenewalOutcome, error) {
	now := biztime.NowUTC()

	due, err := uc.subscriptionRepo.ListAutoRenewDue(ctx, now, now.Add(renewalLookahead))
	if err != nil {
		uc.logger.Errorw("failed to list renewable subscriptions", "error", err)
		return nil, fmt.Errorf("failed to list renewable subscriptions: %w", err)
	}

	outcomes := make([]RenewalOutcome, 0, len(due))
	for _, candidate := range due {
		outcome := uc.renew(ctx, candidate.ID())
		outcomes = append(outcomes, outcome)

		switch outcome.Status {
		case RenewalSuccess:
			dispatchFamilySync(ctx, uc.familySync, outcome.UserID)
		case RenewalFailed:
			uc.logger.Errorw("auto renewal failed", "error", outcome.Err, "subscription_id", outcome.SubscriptionID)
		}

		if uc.notifier != nil && outcome.Status != RenewalFailed {
			if err := uc.notifier.NotifyRenewal(ctx, outcome); err != nil {
				uc.logger.Warnw("failed to notify renewal outcome", "error", err, "subscription_id", outcome.SubscriptionID)
			}
		}
	}

	uc.logger.Infow("auto renewal sweep finished", "candidates", len(due))
	return outcomes, nil
}

func (uc *RunAutoRenewalsUseCase) renew(ctx context.Context, subscriptionID uint) RenewalOutcome {
	outcome := RenewalOutcome{SubscriptionID: subscriptionID}

	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		now := biztime.NowUTC()

		sub, err := uc.subscriptionRepo.GetByIDForUpdate(ctx, subscriptionID)
		if err != nil {
			return err
		}
		outcome.UserID = sub.UserID()
		outcome.ExpiresAt = sub.ExpiresAt()

		plan, err := uc.planRepo.GetByID(ctx, sub.PlanID())
		if err != nil {
			return err
		}
		cheapest := plan.CheapestDuration()
		if cheapest == nil {
			return fmt.Errorf("plan %d has no durations: %w", plan.ID(), subscription.ErrDurationNotFound)
		}
		outcome.Amount = cheapest.Price()

		owner, err := uc.userRepo.GetByIDForUpdate(ctx, sub.UserID())
		if err != nil {
			return err
		}
		if !owner.CanAfford(cheapest.Price()) {
			outcome.Status = RenewalInsufficientFunds
			return nil
		}

		if err := uc.userRepo.Debit(ctx, owner.ID(), cheapest.Price()); err != nil {
			return err
		}
		if err := sub.Extend(biztime.Days(uc.renewDays), now); err != nil {
			return err
		}
		if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
			return err
		}

		outcome.Status = RenewalSuccess
		outcome.ExpiresAt = sub.ExpiresAt()
		return nil
	})
	if err != nil {
		outcome.Status = RenewalFailed
		outcome.Err = err
	}
	return outcome
}
