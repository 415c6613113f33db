package usecases

import (
	"context"
	"errors"

	"github.com/orris-inc/passage/internal/domain/family"
	"github.com/orris-inc/passage/internal/domain/user"
	"github.com/orris-inc/passage/internal/shared/biztime"
	"github.com/orris-inc/passage/internal/shared/id"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type RedeemInviteCommand struct {
	ChildUserID uint
	Code        string
}

type RedeemInviteResult struct {
	ParentUserID uint
	// Linked is false when the child already belonged to this parent.
	Linked bool
}

// RedeemInviteUseCase links a child to the invite's parent. A child has at
// most one parent; redeeming another invite of the same parent is a no-op.
type RedeemInviteUseCase struct {
	txManager  TransactionRunner
	userRepo   user.Repository
	inviteRepo family.InviteRepository
	dispatcher SyncDispatcher
	logger     logger.Interface
}

func NewRedeemInviteUseCase(
	txManager TransactionRunner,
	userRepo user.Repository,
	inviteRepo family.InviteRepository,
	dispatcher SyncDispatcher,
	logger logger.Interface,
) *RedeemInviteUseCase {
	return &RedeemInviteUseCase{
		txManager:  txManager,
		userRepo:   userRepo,
		inviteRepo: inviteRepo,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (uc *RedeemInviteUseCase) Execute(ctx context.Context, cmd RedeemInviteCommand) (*RedeemInviteResult, error) {
	result := &RedeemInviteResult{}
	code := id.NormalizeCode(cmd.Code)

	err := uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		now := biztime.NowUTC()

		invite, err := uc.inviteRepo.GetByCodeForUpdate(ctx, code)
		if errors.Is(err, family.ErrInviteNotFound) {
			return family.ErrInvalidOrExpiredCode
		}
		if err != nil {
			return err
		}
		result.ParentUserID = invite.ParentID()

		child, err := uc.userRepo.GetByIDForUpdate(ctx, cmd.ChildUserID)
		if err != nil {
			return err
		}
		linked, err := child.LinkParent(invite.ParentID(), now)
		if err != nil || !linked {
			return err
		}

		if err := invite.CheckUsable(now); err != nil {
			return err
		}
		if err := uc.inviteRepo.IncrementUse(ctx, invite.ID()); err != nil {
			return err
		}
		if err := uc.userRepo.Update(ctx, child); err != nil {
			return err
		}
		result.Linked = true
		return nil
	})
	if err != nil {
		uc.logger.Warnw("family invite redemption failed", "error", err, "user_id", cmd.ChildUserID, "code", code)
		return nil, err
	}

	uc.logger.Infow("family invite redeemed",
		"user_id", cmd.ChildUserID,
		"parent_id", result.ParentUserID,
		"linked", result.Linked,
	)

	if uc.dispatcher != nil {
		uc.dispatcher.Dispatch(ctx, result.ParentUserID)
	}
	return result, nil
}
