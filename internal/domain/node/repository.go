package node

import "context"

// Repository reads node configuration.
type Repository interface {
	GetByID(ctx context.Context, id uint) (*Node, error)
	// ListActive returns active nodes ordered by id.
	ListActive(ctx context.Context) ([]*Node, error)
	// ListEnabledInbounds returns enabled inbounds of the given nodes ordered by id.
	ListEnabledInbounds(ctx context.Context, nodeIDs []uint) ([]*Inbound, error)
	// ListIPs returns the IP of every configured node, active or not.
	ListIPs(ctx context.Context) ([]string, error)
}
