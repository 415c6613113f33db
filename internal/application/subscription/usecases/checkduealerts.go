package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/passage/internal/domain/subscription"
	vo "github.com/orris-inc/passage/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/passage/internal/shared/biztime"
	"github.com/orris-inc/passage/internal/shared/logger"
)

var (
	expiryAlertFrom = biztime.Days(2)
	expiryAlertTo   = biztime.Days(3)
)

// CheckDueAlertsUseCase emits traffic and expiry alerts once per subscription
// and kind, recording each in alerts_sent.
type CheckDueAlertsUseCase struct {
	txManager        TransactionRunner
	planRepo         subscription.PlanRepository
	subscriptionRepo subscription.Repository
	notifier         Notifier
	logger           logger.Interface
}

func NewCheckDueAlertsUseCase(
	txManager TransactionRunner,
	planRepo subscription.PlanRepository,
	subscriptionRepo subscription.Repository,
	logger logger.Interface,
) *CheckDueAlertsUseCase {
	return &CheckDueAlertsUseCase{
		txManager:        txManager,
		planRepo:         planRepo,
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

// SetNotifier sets the alert notifier (optional).
func (uc *CheckDueAlertsUseCase) SetNotifier(notifier Notifier) {
	uc.notifier = notifier
}

func (uc *CheckDueAlertsUseCase) Execute(ctx context.Context) ([]DueAlert, error) {
	now := biztime.NowUTC()

	live, err := uc.subscriptionRepo.ListLive(ctx, now)
	if err != nil {
		uc.logger.Errorw("failed to list live subscriptions", "error", err)
		return nil, fmt.Errorf("failed to list live subscriptions: %w", err)
	}

	plans := make(map[uint]*subscription.Plan)
	var alerts []DueAlert
	for _, candidate := range live {
		plan, ok := plans[candidate.PlanID()]
		if !ok {
			plan, err = uc.planRepo.GetByID(ctx, candidate.PlanID())
			if err != nil {
				uc.logger.Warnw("skipping subscription with unreadable plan", "error", err, "subscription_id", candidate.ID())
				continue
			}
			plans[plan.ID()] = plan
		}

		if len(dueKinds(candidate, plan, now)) == 0 {
			continue
		}

		emitted, err := uc.record(ctx, candidate.ID(), plan, now)
		if err != nil {
			uc.logger.Errorw("failed to record alerts", "error", err, "subscription_id", candidate.ID())
			continue
		}
		alerts = append(alerts, emitted...)
	}

	for _, alert := range alerts {
		if uc.notifier == nil {
			break
		}
		if err := uc.notifier.NotifyAlert(ctx, alert); err != nil {
			uc.logger.Warnw("failed to deliver alert", "error", err, "subscription_id", alert.SubscriptionID, "kind", alert.Kind)
		}
	}

	uc.logger.Infow("alert sweep finished", "checked", len(live), "emitted", len(alerts))
	return alerts, nil
}

// record re-reads the subscription under lock so concurrent sweeps cannot
// emit the same alert twice.
func (uc *CheckDueAlertsUseCase) record(ctx context.Context, subscriptionID uint, plan *subscription.Plan, now time.Time) ([]DueAlert, error) {
	var emitted []DueAlert

	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sub, err := uc.subscriptionRepo.GetByIDForUpdate(ctx, subscriptionID)
		if err != nil {
			return err
		}

		kinds := dueKinds(sub, plan, now)
		if len(kinds) == 0 {
			return nil
		}
		for _, kind := range kinds {
			sub.RecordAlert(kind)
			emitted = append(emitted, DueAlert{
				UserID:         sub.UserID(),
				SubscriptionID: sub.ID(),
				Kind:           kind,
				ExpiresAt:      sub.ExpiresAt(),
			})
		}
		return uc.subscriptionRepo.Update(ctx, sub)
	})
	if err != nil {
		return nil, err
	}
	return emitted, nil
}

// dueKinds lists alerts not yet sent for sub, lowest traffic threshold first.
// Usage that jumps past several thresholds at once emits each of them.
func dueKinds(sub *subscription.Subscription, plan *subscription.Plan, now time.Time) []vo.AlertKind {
	var kinds []vo.AlertKind
	sent := sub.AlertsSent()

	if limit := plan.TrafficLimitBytes(); limit > 0 {
		usage := sub.TrafficUsagePercent(limit)
		for _, th := range vo.TrafficThresholds {
			if usage >= th.Percent && !sent.Has(th.Kind) {
				kinds = append(kinds, th.Kind)
			}
		}
	}

	remaining := sub.ExpiresAt().Sub(now)
	if remaining >= expiryAlertFrom && remaining < expiryAlertTo && !sent.Has(vo.AlertExpiry3Days) {
		kinds = append(kinds, vo.AlertExpiry3Days)
	}
	return kinds
}
