package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubscriptionModel is the ledger row. Pending rows keep their intended
// duration in expires_at - created_at.
type SubscriptionModel struct {
	ID          uint   `gorm:"primarykey"`
	UUID        string `gorm:"uniqueIndex;not null;size:36;comment:proxy auth secret"`
	AccessToken string `gorm:"uniqueIndex;not null;size:36;comment:profile download token"`
	UserID      uint   `gorm:"not null;index:idx_user_subscription"`
	PlanID      uint   `gorm:"not null;index:idx_plan_subscription"`
	NodeID      *uint
	Status      string `gorm:"not null;size:20;index:idx_status_expiry,priority:1"`
	Origin      string `gorm:"not null;size:32"`
	Note        string `gorm:"size:500"`
	AutoRenew   bool   `gorm:"not null;default:false"`
	AlertsSent  datatypes.JSON
	IsTrial     bool   `gorm:"not null;default:false"`
	UsedTraffic uint64 `gorm:"not null;default:0"`
	CreatedAt   time.Time
	ExpiresAt   time.Time `gorm:"not null;index:idx_status_expiry,priority:2"`
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (SubscriptionModel) TableName() string {
	return "subscriptions"
}
