package models

import "time"

type GiftCodeModel struct {
	ID           uint   `gorm:"primarykey"`
	Code         string `gorm:"uniqueIndex;size:32;not null"`
	PlanID       uint   `gorm:"not null"`
	DurationDays int    `gorm:"not null"`
	CreatedBy    uint   `gorm:"not null;index"`
	RedeemedBy   *uint
	RedeemedAt   *time.Time
	IsActive     bool `gorm:"not null;default:true"`
	ExpiresAt    *time.Time
	CreatedAt    time.Time
}

func (GiftCodeModel) TableName() string {
	return "gift_codes"
}
