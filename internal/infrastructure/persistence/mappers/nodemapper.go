package mappers

import (
	"fmt"

	"github.com/orris-inc/passage/internal/domain/node"
	vo "github.com/orris-inc/passage/internal/domain/node/valueobjects"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/models"
)

func NodeToEntity(model *models.NodeModel) (*node.Node, error) {
	return node.ReconstructNode(
		model.ID,
		model.Name,
		model.IP,
		model.Domain,
		model.RealityPub,
		model.ShortID,
		model.RealitySNI,
		model.IsActive,
	)
}

func InboundToEntity(model *models.InboundModel) (*node.Inbound, error) {
	settings, err := vo.ParseStreamSettings(model.StreamSettings)
	if err != nil {
		return nil, fmt.Errorf("inbound %d: %w", model.ID, err)
	}
	return node.ReconstructInbound(
		model.ID,
		model.NodeID,
		model.Tag,
		vo.Protocol(model.Protocol),
		model.Listen,
		model.Port,
		settings,
		model.IsEnabled,
	)
}
