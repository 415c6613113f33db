package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/passage/internal/application/node/codec"
	"github.com/orris-inc/passage/internal/domain/node"
	"github.com/orris-inc/passage/internal/domain/subscription"
	"github.com/orris-inc/passage/internal/domain/user"
	"github.com/orris-inc/passage/internal/shared/biztime"
	"github.com/orris-inc/passage/internal/shared/logger"
)

// GenerateClientProfileCommand selects the subscription either directly or as
// the user's live subscription with the latest expiry.
type GenerateClientProfileCommand struct {
	UserID         uint
	SubscriptionID uint
	Format         string
}

type GenerateClientProfileResult struct {
	Content        string
	ContentType    string
	Format         string
	SubscriptionID uint
	UsedTraffic    uint64
	TrafficLimit   uint64
	ExpiresAt      time.Time
}

type GenerateClientProfileUseCase struct {
	subscriptionRepo subscription.Repository
	planRepo         subscription.PlanRepository
	targets          *targetBuilder
	registry         *codec.Registry
	formatters       map[string]ProfileFormatter
	logger           logger.Interface
}

func NewGenerateClientProfileUseCase(
	subscriptionRepo subscription.Repository,
	planRepo subscription.PlanRepository,
	nodeRepo node.Repository,
	userRepo user.Repository,
	registry *codec.Registry,
	wireGuardSubnet string,
	logger logger.Interface,
) *GenerateClientProfileUseCase {
	uc := &GenerateClientProfileUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		targets:          &targetBuilder{nodeRepo: nodeRepo, userRepo: userRepo, wireGuardSubnet: wireGuardSubnet},
		registry:         registry,
		formatters:       make(map[string]ProfileFormatter),
		logger:           logger,
	}

	uc.formatters[FormatSingBox] = NewSingBoxFormatter()
	uc.formatters[FormatClash] = NewClashFormatter()
	uc.formatters[FormatBase64] = NewBase64Formatter()

	return uc
}

func (uc *GenerateClientProfileUseCase) Execute(ctx context.Context, cmd GenerateClientProfileCommand) (*GenerateClientProfileResult, error) {
	format := cmd.Format
	if format == "" {
		format = FormatSingBox
	}
	formatter, ok := uc.formatters[format]
	if !ok {
		uc.logger.Warnw("unsupported format", "format", cmd.Format)
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, cmd.Format)
	}

	now := biztime.NowUTC()
	sub, err := uc.selectSubscription(ctx, cmd, now)
	if err != nil {
		return nil, err
	}

	plan, err := uc.planRepo.GetByID(ctx, sub.PlanID())
	if err != nil {
		uc.logger.Errorw("failed to get plan", "error", err, "plan_id", sub.PlanID())
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	targets, err := uc.targets.build(ctx, sub)
	if err != nil {
		uc.logger.Errorw("failed to resolve inbounds", "error", err, "subscription_id", sub.ID())
		return nil, err
	}

	profile := Profile{URIs: renderURIs(uc.registry, targets, uc.logger)}
	for _, t := range targets {
		c, ok := uc.registry.Lookup(t.Inbound.Protocol())
		if !ok {
			continue
		}
		outbounds, err := c.RenderOutbounds(t)
		if err != nil {
			uc.logger.Warnw("failed to render outbound", "error", err, "inbound_id", t.Inbound.ID(), "node_id", t.Node.ID())
			continue
		}
		profile.Outbounds = append(profile.Outbounds, outbounds...)
	}
	profile.Outbounds = uniqueTags(profile.Outbounds)

	content, err := formatter.Format(profile)
	if err != nil {
		uc.logger.Errorw("failed to format profile", "error", err, "format", format)
		return nil, fmt.Errorf("failed to format profile: %w", err)
	}

	uc.logger.Debugw("client profile generated",
		"subscription_id", sub.ID(),
		"format", format,
		"outbound_count", len(profile.Outbounds),
	)

	return &GenerateClientProfileResult{
		Content:        content,
		ContentType:    formatter.ContentType(),
		Format:         format,
		SubscriptionID: sub.ID(),
		UsedTraffic:    sub.UsedTraffic(),
		TrafficLimit:   plan.TrafficLimitBytes(),
		ExpiresAt:      sub.ExpiresAt(),
	}, nil
}

func (uc *GenerateClientProfileUseCase) selectSubscription(ctx context.Context, cmd GenerateClientProfileCommand, now time.Time) (*subscription.Subscription, error) {
	if cmd.SubscriptionID != 0 {
		sub, err := uc.subscriptionRepo.GetByID(ctx, cmd.SubscriptionID)
		if err != nil {
			return nil, fmt.Errorf("failed to get subscription: %w", err)
		}
		if !sub.IsLive(now) {
			return nil, subscription.ErrNotActive
		}
		return sub, nil
	}

	live, err := uc.subscriptionRepo.ListLiveByUser(ctx, cmd.UserID, now)
	if err != nil {
		uc.logger.Errorw("failed to list live subscriptions", "error", err, "user_id", cmd.UserID)
		return nil, fmt.Errorf("failed to list live subscriptions: %w", err)
	}
	if len(live) == 0 {
		return nil, subscription.ErrSubscriptionNotFound
	}
	return live[0], nil
}
