package models

import "time"

// IPRecordModel is unique per (subscription_id, client_ip); upserts refresh
// last_seen_at.
type IPRecordModel struct {
	ID             uint      `gorm:"primarykey"`
	SubscriptionID uint      `gorm:"not null;uniqueIndex:idx_subscription_ip,priority:1"`
	ClientIP       string    `gorm:"size:64;not null;uniqueIndex:idx_subscription_ip,priority:2"`
	UserAgent      string    `gorm:"size:255"`
	LastSeenAt     time.Time `gorm:"not null;index:idx_last_seen"`
}

func (IPRecordModel) TableName() string {
	return "subscription_ips"
}
