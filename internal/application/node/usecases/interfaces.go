package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/orris-inc/passage/internal/application/node/codec"
	"github.com/orris-inc/passage/internal/domain/node"
	"github.com/orris-inc/passage/internal/domain/subscription"
	"github.com/orris-inc/passage/internal/domain/user"
)

// ErrUnsupportedFormat is returned for profile formats without a formatter.
var ErrUnsupportedFormat = errors.New("unsupported profile format")

// targetBuilder expands a subscription into one codec target per reachable
// inbound: the assigned node's enabled inbounds, or those of every active node
// when no usable node is assigned.
type targetBuilder struct {
	nodeRepo        node.Repository
	userRepo        user.Repository
	wireGuardSubnet string
}

func (b *targetBuilder) build(ctx context.Context, sub *subscription.Subscription) ([]codec.Target, error) {
	owner, err := b.userRepo.GetByID(ctx, sub.UserID())
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription owner: %w", err)
	}

	nodes, err := b.reachableNodes(ctx, sub)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(nodes))
	byID := make(map[uint]*node.Node, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID())
		byID[n.ID()] = n
	}

	inbounds, err := b.nodeRepo.ListEnabledInbounds(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbounds: %w", err)
	}

	perNode := make(map[uint][]*node.Inbound, len(nodes))
	for _, in := range inbounds {
		perNode[in.NodeID()] = append(perNode[in.NodeID()], in)
	}

	targets := make([]codec.Target, 0, len(inbounds))
	for _, id := range ids {
		for _, in := range perNode[id] {
			targets = append(targets, codec.Target{
				Credential:      sub.Credential(),
				UserID:          owner.ID(),
				TelegramID:      owner.TelegramID(),
				Node:            byID[id],
				Inbound:         in,
				WireGuardSubnet: b.wireGuardSubnet,
			})
		}
	}
	return targets, nil
}

func (b *targetBuilder) reachableNodes(ctx context.Context, sub *subscription.Subscription) ([]*node.Node, error) {
	if nodeID := sub.NodeID(); nodeID != nil {
		n, err := b.nodeRepo.GetByID(ctx, *nodeID)
		switch {
		case err == nil && n.IsActive():
			return []*node.Node{n}, nil
		case err != nil && !errors.Is(err, node.ErrNodeNotFound):
			return nil, fmt.Errorf("failed to get assigned node: %w", err)
		}
	}

	nodes, err := b.nodeRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active nodes: %w", err)
	}
	return nodes, nil
}
