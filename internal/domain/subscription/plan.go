package subscription

import "fmt"

const bytesPerGB = 1 << 30

// Plan is read-only configuration owned by the admin surface.
type Plan struct {
	id             uint
	name           string
	deviceLimit    int
	trafficLimitGB int
	isActive       bool
	durations      []*PlanDuration
}

// PlanDuration is one purchasable option of a plan. Zero days means the plan
// does not expire by time.
type PlanDuration struct {
	id     uint
	planID uint
	days   int
	price  int64
}

func ReconstructPlan(id uint, name string, deviceLimit, trafficLimitGB int, isActive bool, durations []*PlanDuration) (*Plan, error) {
	if id == 0 {
		return nil, fmt.Errorf("plan ID cannot be zero")
	}
	if deviceLimit < 0 || trafficLimitGB < 0 {
		return nil, fmt.Errorf("plan limits cannot be negative")
	}
	return &Plan{
		id:             id,
		name:           name,
		deviceLimit:    deviceLimit,
		trafficLimitGB: trafficLimitGB,
		isActive:       isActive,
		durations:      durations,
	}, nil
}

func ReconstructPlanDuration(id, planID uint, days int, price int64) (*PlanDuration, error) {
	if id == 0 || planID == 0 {
		return nil, fmt.Errorf("plan duration requires id and plan id")
	}
	if days < 0 || price < 0 {
		return nil, ErrInvalidDuration
	}
	return &PlanDuration{id: id, planID: planID, days: days, price: price}, nil
}

func (p *Plan) ID() uint                   { return p.id }
func (p *Plan) Name() string               { return p.name }
func (p *Plan) DeviceLimit() int           { return p.deviceLimit }
func (p *Plan) TrafficLimitGB() int        { return p.trafficLimitGB }
func (p *Plan) IsActive() bool             { return p.isActive }
func (p *Plan) Durations() []*PlanDuration { return p.durations }

// TrafficLimitBytes is 0 for unlimited plans.
func (p *Plan) TrafficLimitBytes() uint64 {
	return uint64(p.trafficLimitGB) * bytesPerGB
}

// CheapestDuration returns the lowest priced duration, nil if the plan has none.
func (p *Plan) CheapestDuration() *PlanDuration {
	var cheapest *PlanDuration
	for _, d := range p.durations {
		if cheapest == nil || d.price < cheapest.price {
			cheapest = d
		}
	}
	return cheapest
}

func (d *PlanDuration) ID() uint     { return d.id }
func (d *PlanDuration) PlanID() uint { return d.planID }
func (d *PlanDuration) Days() int    { return d.days }
func (d *PlanDuration) Price() int64 { return d.price }
