package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/passage/internal/domain/family"
	"github.com/orris-inc/passage/internal/domain/user"
	"github.com/orris-inc/passage/internal/shared/biztime"
	"github.com/orris-inc/passage/internal/shared/id"
	"github.com/orris-inc/passage/internal/shared/logger"
)

const (
	DefaultInviteMaxUses = 5
	DefaultInviteTTL     = 7 * 24 * time.Hour
)

type CreateInviteCommand struct {
	ParentUserID uint
	// MaxUses and TTL fall back to the defaults when zero.
	MaxUses int
	TTL     time.Duration
}

type CreateInviteUseCase struct {
	userRepo   user.Repository
	inviteRepo family.InviteRepository
	logger     logger.Interface
}

func NewCreateInviteUseCase(userRepo user.Repository, inviteRepo family.InviteRepository, logger logger.Interface) *CreateInviteUseCase {
	return &CreateInviteUseCase{
		userRepo:   userRepo,
		inviteRepo: inviteRepo,
		logger:     logger,
	}
}

func (uc *CreateInviteUseCase) Execute(ctx context.Context, cmd CreateInviteCommand) (*family.Invite, error) {
	parent, err := uc.userRepo.GetByID(ctx, cmd.ParentUserID)
	if err != nil {
		return nil, err
	}
	if parent.IsBanned() {
		return nil, user.ErrUserBanned
	}

	maxUses := cmd.MaxUses
	if maxUses == 0 {
		maxUses = DefaultInviteMaxUses
	}
	ttl := cmd.TTL
	if ttl == 0 {
		ttl = DefaultInviteTTL
	}

	code, err := id.NewFamilyInviteCode()
	if err != nil {
		return nil, err
	}
	invite, err := family.NewInvite(code, parent.ID(), maxUses, ttl, biztime.NowUTC())
	if err != nil {
		return nil, err
	}
	if err := uc.inviteRepo.Create(ctx, invite); err != nil {
		uc.logger.Errorw("failed to create family invite", "error", err, "user_id", parent.ID())
		return nil, fmt.Errorf("failed to create family invite: %w", err)
	}

	uc.logger.Infow("family invite created",
		"user_id", parent.ID(),
		"code", invite.Code(),
		"max_uses", invite.MaxUses(),
	)
	return invite, nil
}
