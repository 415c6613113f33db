package models

import "time"

type FamilyInviteModel struct {
	ID        uint      `gorm:"primarykey"`
	Code      string    `gorm:"uniqueIndex;size:32;not null"`
	ParentID  uint      `gorm:"not null;index"`
	MaxUses   int       `gorm:"not null"`
	UsedCount int       `gorm:"not null;default:0"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

func (FamilyInviteModel) TableName() string {
	return "family_invites"
}
