package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/passage/internal/domain/node"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/models"
	"github.com/orris-inc/passage/internal/shared/db"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type NodeRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewNodeRepository(db *gorm.DB, logger logger.Interface) node.Repository {
	return &NodeRepositoryImpl{db: db, logger: logger}
}

func (r *NodeRepositoryImpl) GetByID(ctx context.Context, id uint) (*node.Node, error) {
	var model models.NodeModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, node.ErrNodeNotFound
		}
		return nil, fmt.Errorf("failed to get node: %w", err)
	}
	return mappers.NodeToEntity(&model)
}

func (r *NodeRepositoryImpl) ListActive(ctx context.Context) ([]*node.Node, error) {
	var list []*models.NodeModel
	if err := db.GetTxFromContext(ctx, r.db).Where("is_active = ?", true).Order("id").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list active nodes: %w", err)
	}

	nodes := make([]*node.Node, 0, len(list))
	for _, m := range list {
		n, err := mappers.NodeToEntity(m)
		if err != nil {
			r.logger.Warnw("skipping malformed node", "node_id", m.ID, "error", err)
			continue
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (r *NodeRepositoryImpl) ListEnabledInbounds(ctx context.Context, nodeIDs []uint) ([]*node.Inbound, error) {
	if len(nodeIDs) == 0 {
		return nil, nil
	}

	var list []*models.InboundModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("node_id IN ? AND is_enabled = ?", nodeIDs, true).
		Order("node_id, id").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list inbounds: %w", err)
	}

	inbounds := make([]*node.Inbound, 0, len(list))
	for _, m := range list {
		in, err := mappers.InboundToEntity(m)
		if err != nil {
			r.logger.Warnw("skipping malformed inbound", "inbound_id", m.ID, "node_id", m.NodeID, "error", err)
			continue
		}
		inbounds = append(inbounds, in)
	}
	return inbounds, nil
}

func (r *NodeRepositoryImpl) ListIPs(ctx context.Context) ([]string, error) {
	var ips []string
	if err := db.GetTxFromContext(ctx, r.db).Model(&models.NodeModel{}).Pluck("ip", &ips).Error; err != nil {
		return nil, fmt.Errorf("failed to list node IPs: %w", err)
	}
	return ips, nil
}
