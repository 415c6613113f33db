package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/orris-inc/passage/internal/application/node/codec"
	"github.com/orris-inc/passage/internal/domain/node"
	"github.com/orris-inc/passage/internal/domain/subscription"
	"github.com/orris-inc/passage/internal/domain/user"
	"github.com/orris-inc/passage/internal/shared/biztime"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type GetSubscriptionLinksQuery struct {
	SubscriptionID uint
}

type GetSubscriptionLinksUseCase struct {
	subscriptionRepo subscription.Repository
	targets          *targetBuilder
	registry         *codec.Registry
	logger           logger.Interface
}

func NewGetSubscriptionLinksUseCase(
	subscriptionRepo subscription.Repository,
	nodeRepo node.Repository,
	userRepo user.Repository,
	registry *codec.Registry,
	wireGuardSubnet string,
	logger logger.Interface,
) *GetSubscriptionLinksUseCase {
	return &GetSubscriptionLinksUseCase{
		subscriptionRepo: subscriptionRepo,
		targets:          &targetBuilder{nodeRepo: nodeRepo, userRepo: userRepo, wireGuardSubnet: wireGuardSubnet},
		registry:         registry,
		logger:           logger,
	}
}

// Execute returns one URI per reachable inbound of a live subscription.
func (uc *GetSubscriptionLinksUseCase) Execute(ctx context.Context, query GetSubscriptionLinksQuery) ([]string, error) {
	sub, err := uc.subscriptionRepo.GetByID(ctx, query.SubscriptionID)
	if err != nil {
		uc.logger.Warnw("failed to get subscription", "error", err, "subscription_id", query.SubscriptionID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if !sub.IsLive(biztime.NowUTC()) {
		return nil, subscription.ErrNotActive
	}

	targets, err := uc.targets.build(ctx, sub)
	if err != nil {
		uc.logger.Errorw("failed to resolve inbounds", "error", err, "subscription_id", sub.ID())
		return nil, err
	}

	return renderURIs(uc.registry, targets, uc.logger), nil
}

func renderURIs(registry *codec.Registry, targets []codec.Target, log logger.Interface) []string {
	links := make([]string, 0, len(targets))
	for _, t := range targets {
		c, ok := registry.Lookup(t.Inbound.Protocol())
		if !ok {
			log.Debugw("skipping inbound with unknown protocol", "inbound_id", t.Inbound.ID(), "protocol", t.Inbound.Protocol())
			continue
		}
		uri, err := c.RenderURI(t)
		if errors.Is(err, codec.ErrNoURIForm) {
			continue
		}
		if err != nil {
			log.Warnw("failed to render uri", "error", err, "inbound_id", t.Inbound.ID())
			continue
		}
		links = append(links, uri)
	}
	return links
}
