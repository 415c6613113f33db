package mappers

import (
	"fmt"

	"github.com/orris-inc/passage/internal/domain/subscription"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/models"
)

func PlanDurationToEntity(model *models.PlanDurationModel) (*subscription.PlanDuration, error) {
	d, err := subscription.ReconstructPlanDuration(model.ID, model.PlanID, model.Days, model.Price)
	if err != nil {
		return nil, fmt.Errorf("plan duration %d: %w", model.ID, err)
	}
	return d, nil
}

func PlanToEntity(model *models.PlanModel) (*subscription.Plan, error) {
	durations := make([]*subscription.PlanDuration, 0, len(model.Durations))
	for i := range model.Durations {
		d, err := PlanDurationToEntity(&model.Durations[i])
		if err != nil {
			return nil, err
		}
		durations = append(durations, d)
	}
	return subscription.ReconstructPlan(model.ID, model.Name, model.DeviceLimit, model.TrafficLimitGB, model.IsActive, durations)
}
