package models

import "time"

// UserModel mirrors the external user directory.
type UserModel struct {
	ID         uint   `gorm:"primarykey"`
	TelegramID int64  `gorm:"uniqueIndex;not null"`
	Username   string `gorm:"size:64;index:idx_username"`
	Balance    int64  `gorm:"not null;default:0;comment:balance in cents"`
	IsBanned   bool   `gorm:"not null;default:false"`
	ParentID   *uint  `gorm:"index:idx_parent"`
	ReferrerID *uint
	StartedAt  *time.Time
	TrialUsed  bool `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (UserModel) TableName() string {
	return "users"
}
