package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/orris-inc/passage/internal/domain/subscription"
	vo "github.com/orris-inc/passage/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/passage/internal/domain/user"
	"github.com/orris-inc/passage/internal/shared/biztime"
	"github.com/orris-inc/passage/internal/shared/logger"
)

// SyncResult counts the child subscriptions one sync run wrote.
type SyncResult struct {
	Created int
	Updated int
	Expired int
}

func (r SyncResult) Writes() int {
	return r.Created + r.Updated + r.Expired
}

// SyncFamilyUseCase mirrors a parent's current subscription onto every linked
// child. Rerunning it without a state change writes nothing.
type SyncFamilyUseCase struct {
	txManager        TransactionRunner
	userRepo         user.Repository
	subscriptionRepo subscription.Repository
	logger           logger.Interface
}

func NewSyncFamilyUseCase(
	txManager TransactionRunner,
	userRepo user.Repository,
	subscriptionRepo subscription.Repository,
	logger logger.Interface,
) *SyncFamilyUseCase {
	return &SyncFamilyUseCase{
		txManager:        txManager,
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

func (uc *SyncFamilyUseCase) Execute(ctx context.Context, parentUserID uint) (SyncResult, error) {
	var result SyncResult

	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		result = SyncResult{}
		now := biztime.NowUTC()

		// Runs for one parent serialize on the parent row, so two of them never
		// both see a child without a family subscription.
		if _, err := uc.userRepo.GetByIDForUpdate(ctx, parentUserID); err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return nil
			}
			return err
		}

		children, err := uc.userRepo.ListChildren(ctx, parentUserID)
		if err != nil {
			return err
		}
		if len(children) == 0 {
			return nil
		}

		source, err := uc.currentSubscription(ctx, parentUserID, now)
		if err != nil {
			return err
		}

		for _, child := range children {
			if _, err := uc.userRepo.GetByIDForUpdate(ctx, child.ID()); err != nil {
				return err
			}
			if source == nil {
				n, err := uc.expireChild(ctx, child.ID(), now)
				if err != nil {
					return err
				}
				result.Expired += n
				continue
			}
			if err := uc.mirrorChild(ctx, child.ID(), source, now, &result); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("family sync failed", "error", err, "user_id", parentUserID)
		return SyncResult{}, err
	}

	if result.Writes() > 0 {
		uc.logger.Infow("family synced",
			"user_id", parentUserID,
			"created", result.Created,
			"updated", result.Updated,
			"expired", result.Expired,
		)
	}
	return result, nil
}

// currentSubscription is the parent's live subscription with the latest
// expiry, ignoring any the parent itself received through a family.
func (uc *SyncFamilyUseCase) currentSubscription(ctx context.Context, parentUserID uint, now time.Time) (*subscription.Subscription, error) {
	live, err := uc.subscriptionRepo.ListLiveByUser(ctx, parentUserID, now)
	if err != nil {
		return nil, err
	}
	for _, sub := range live {
		if !sub.Origin().IsFamily() {
			return sub, nil
		}
	}
	return nil, nil
}

func (uc *SyncFamilyUseCase) mirrorChild(ctx context.Context, childID uint, source *subscription.Subscription, now time.Time, result *SyncResult) error {
	owned, err := uc.subscriptionRepo.ListByUser(ctx, childID)
	if err != nil {
		return err
	}

	if target := mirrorTarget(owned, source.PlanID()); target != nil {
		if !target.MirrorFrom(source, now) {
			return nil
		}
		if err := uc.subscriptionRepo.Update(ctx, target); err != nil {
			return err
		}
		result.Updated++
		return nil
	}

	sub, err := subscription.NewActiveSubscription(childID, source.PlanID(), source.NodeID(), source.ExpiresAt(), vo.OriginFamilySync, now)
	if err != nil {
		return err
	}
	if err := uc.subscriptionRepo.Create(ctx, sub); err != nil {
		return err
	}
	result.Created++
	return nil
}

// mirrorTarget picks the child's family subscription, else an active one on
// the parent's plan. Pending vouchers are never touched.
func mirrorTarget(owned []*subscription.Subscription, planID uint) *subscription.Subscription {
	var samePlan *subscription.Subscription
	for _, sub := range owned {
		if sub.Origin().IsFamily() {
			return sub
		}
		if samePlan == nil && sub.Status().IsActive() && sub.PlanID() == planID {
			samePlan = sub
		}
	}
	return samePlan
}

func (uc *SyncFamilyUseCase) expireChild(ctx context.Context, childID uint, now time.Time) (int, error) {
	subs, err := uc.subscriptionRepo.ListByUserAndOrigin(ctx, childID, vo.OriginFamilySync)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, sub := range subs {
		if !sub.ForceExpire(now) {
			continue
		}
		if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
			return expired, err
		}
		expired++
	}
	return expired, nil
}
