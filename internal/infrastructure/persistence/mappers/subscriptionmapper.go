package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/orris-inc/passage/internal/domain/subscription"
	vo "github.com/orris-inc/passage/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/models"
)

type SubscriptionMapper interface {
	ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error)
	ToModel(entity *subscription.Subscription) (*models.SubscriptionModel, error)
	ToEntities(models []*models.SubscriptionModel) ([]*subscription.Subscription, error)
}

type SubscriptionMapperImpl struct{}

func NewSubscriptionMapper() SubscriptionMapper {
	return &SubscriptionMapperImpl{}
}

func (m *SubscriptionMapperImpl) ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	if model == nil {
		return nil, nil
	}

	credential, err := vo.ReconstructCredential(model.UUID, model.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("subscription %d: %w", model.ID, err)
	}

	var kinds []vo.AlertKind
	if len(model.AlertsSent) > 0 {
		if err := json.Unmarshal(model.AlertsSent, &kinds); err != nil {
			return nil, fmt.Errorf("failed to unmarshal alerts_sent: %w", err)
		}
	}

	entity, err := subscription.ReconstructSubscription(
		model.ID,
		model.UserID,
		model.PlanID,
		model.NodeID,
		vo.SubscriptionStatus(model.Status),
		vo.Origin(model.Origin),
		credential,
		model.Note,
		model.AutoRenew,
		vo.NewAlertSet(kinds...),
		model.IsTrial,
		model.UsedTraffic,
		model.CreatedAt.UTC(),
		model.ExpiresAt.UTC(),
		model.UpdatedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct subscription: %w", err)
	}
	return entity, nil
}

func (m *SubscriptionMapperImpl) ToModel(entity *subscription.Subscription) (*models.SubscriptionModel, error) {
	if entity == nil {
		return nil, nil
	}

	alerts, err := json.Marshal(entity.AlertsSent().Slice())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal alerts_sent: %w", err)
	}

	return &models.SubscriptionModel{
		ID:          entity.ID(),
		UUID:        entity.Credential().UUID(),
		AccessToken: entity.Credential().AccessToken(),
		UserID:      entity.UserID(),
		PlanID:      entity.PlanID(),
		NodeID:      entity.NodeID(),
		Status:      entity.Status().String(),
		Origin:      entity.Origin().String(),
		Note:        entity.Note(),
		AutoRenew:   entity.AutoRenew(),
		AlertsSent:  datatypes.JSON(alerts),
		IsTrial:     entity.IsTrial(),
		UsedTraffic: entity.UsedTraffic(),
		CreatedAt:   entity.CreatedAt(),
		ExpiresAt:   entity.ExpiresAt(),
		UpdatedAt:   entity.UpdatedAt(),
	}, nil
}

func (m *SubscriptionMapperImpl) ToEntities(list []*models.SubscriptionModel) ([]*subscription.Subscription, error) {
	entities := make([]*subscription.Subscription, 0, len(list))
	for _, model := range list {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
