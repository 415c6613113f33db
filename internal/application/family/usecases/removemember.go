package usecases

import (
	"context"

	"github.com/orris-inc/passage/internal/domain/family"
	"github.com/orris-inc/passage/internal/domain/subscription"
	vo "github.com/orris-inc/passage/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/passage/internal/domain/user"
	"github.com/orris-inc/passage/internal/shared/biztime"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type RemoveMemberCommand struct {
	ParentUserID uint
	ChildUserID  uint
}

// RemoveMemberUseCase unlinks a child and ends the access it had through the
// family. Its own purchases are left alone.
type RemoveMemberUseCase struct {
	txManager        TransactionRunner
	userRepo         user.Repository
	subscriptionRepo subscription.Repository
	logger           logger.Interface
}

func NewRemoveMemberUseCase(
	txManager TransactionRunner,
	userRepo user.Repository,
	subscriptionRepo subscription.Repository,
	logger logger.Interface,
) *RemoveMemberUseCase {
	return &RemoveMemberUseCase{
		txManager:        txManager,
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

func (uc *RemoveMemberUseCase) Execute(ctx context.Context, cmd RemoveMemberCommand) error {
	expired := 0

	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		now := biztime.NowUTC()

		child, err := uc.userRepo.GetByIDForUpdate(ctx, cmd.ChildUserID)
		if err != nil {
			return err
		}
		if child.ParentID() == nil || *child.ParentID() != cmd.ParentUserID {
			return family.ErrNotAMember
		}
		child.UnlinkParent(now)
		if err := uc.userRepo.Update(ctx, child); err != nil {
			return err
		}

		subs, err := uc.subscriptionRepo.ListByUserAndOrigin(ctx, child.ID(), vo.OriginFamilySync)
		if err != nil {
			return err
		}
		for _, sub := range subs {
			if !sub.ForceExpire(now) {
				continue
			}
			if err := uc.subscriptionRepo.Update(ctx, sub); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		uc.logger.Warnw("failed to remove family member", "error", err, "user_id", cmd.ChildUserID, "parent_id", cmd.ParentUserID)
		return err
	}

	uc.logger.Infow("family member removed",
		"user_id", cmd.ChildUserID,
		"parent_id", cmd.ParentUserID,
		"expired_subscriptions", expired,
	)
	return nil
}
