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

type AdminGrantCommand struct {
	UserID uint
	PlanID uint
	// Days of validity; 0 grants a non-expiring subscription.
	Days   int
	NodeID *uint
	Note   string
}

// AdminGrantUseCase issues an active subscription without charging the user.
type AdminGrantUseCase struct {
	txManager        TransactionRunner
	userRepo         user.Repository
	planRepo         subscription.PlanRepository
	subscriptionRepo subscription.Repository
	placement        PlacementPolicy
	familySync       FamilySyncDispatcher
	logger           logger.Interface
}

func NewAdminGrantUseCase(
	txManager TransactionRunner,
	userRepo user.Repository,
	planRepo subscription.PlanRepository,
	subscriptionRepo subscription.Repository,
	placement PlacementPolicy,
	familySync FamilySyncDispatcher,
	logger logger.Interface,
) *AdminGrantUseCase {
	return &AdminGrantUseCase{
		txManager:        txManager,
		userRepo:         userRepo,
		planRepo:         planRepo,
		subscriptionRepo: subscriptionRepo,
		placement:        placement,
		familySync:       familySync,
		logger:           logger,
	}
}

func (uc *AdminGrantUseCase) Execute(ctx context.Context, cmd AdminGrantCommand) (*subscription.Subscription, error) {
	if cmd.Days < 0 {
		return nil, subscription.ErrInvalidDuration
	}

	var sub *subscription.Subscription
	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		now := biztime.NowUTC()

		grantee, err := uc.userRepo.GetByID(ctx, cmd.UserID)
		if err != nil {
			return err
		}
		plan, err := uc.planRepo.GetByID(ctx, cmd.PlanID)
		if err != nil {
			return err
		}

		nodeID := cmd.NodeID
		if nodeID == nil {
			placed, err := uc.placement.Place(ctx, grantee.ID(), plan.ID())
			if err != nil {
				return err
			}
			nodeID = &placed
		}

		expiresAt := now.Add(subscription.DurationFromDays(cmd.Days))
		sub, err = subscription.NewActiveSubscription(grantee.ID(), plan.ID(), nodeID, expiresAt, vo.OriginAdminGrant, now)
		if err != nil {
			return err
		}
		sub.SetNote(cmd.Note)
		if err := uc.subscriptionRepo.Create(ctx, sub); err != nil {
			return fmt.Errorf("failed to create subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to grant subscription", "error", err, "user_id", cmd.UserID, "plan_id", cmd.PlanID)
		return nil, err
	}

	uc.logger.Infow("subscription granted",
		"subscription_id", sub.ID(),
		"user_id", sub.UserID(),
		"plan_id", sub.PlanID(),
		"node_id", *sub.NodeID(),
	)

	dispatchFamilySync(ctx, uc.familySync, sub.UserID())
	return sub, nil
}
