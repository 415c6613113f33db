package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/passage/internal/domain/node"
	"github.com/orris-inc/passage/internal/domain/subscription"
)

// PlacementPolicy chooses the node an admin grant is bound to.
type PlacementPolicy interface {
	Place(ctx context.Context, userID, planID uint) (uint, error)
}

// FirstActivePlacement binds grants to the lowest-id active node.
type FirstActivePlacement struct {
	nodeRepo node.Repository
}

func NewFirstActivePlacement(nodeRepo node.Repository) *FirstActivePlacement {
	return &FirstActivePlacement{nodeRepo: nodeRepo}
}

func (p *FirstActivePlacement) Place(ctx context.Context, _, _ uint) (uint, error) {
	nodes, err := p.nodeRepo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active nodes: %w", err)
	}
	if len(nodes) == 0 {
		return 0, subscription.ErrNoNodesAvailable
	}
	return nodes[0].ID(), nil
}
