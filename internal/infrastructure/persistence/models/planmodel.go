package models

// PlanModel is admin-owned configuration.
type PlanModel struct {
	ID             uint                `gorm:"primarykey"`
	Name           string              `gorm:"size:100;not null"`
	DeviceLimit    int                 `gorm:"not null;default:0;comment:0 means unlimited"`
	TrafficLimitGB int                 `gorm:"not null;default:0;comment:0 means unlimited"`
	IsActive       bool                `gorm:"not null;default:true"`
	Durations      []PlanDurationModel `gorm:"foreignKey:PlanID"`
}

func (PlanModel) TableName() string {
	return "plans"
}

type PlanDurationModel struct {
	ID     uint  `gorm:"primarykey"`
	PlanID uint  `gorm:"not null;index:idx_plan_duration"`
	Days   int   `gorm:"not null;comment:0 means non-expiring"`
	Price  int64 `gorm:"not null;comment:price in cents"`
}

func (PlanDurationModel) TableName() string {
	return "plan_durations"
}
