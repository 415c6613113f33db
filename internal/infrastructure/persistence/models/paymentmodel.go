package models

import "time"

type PaymentModel struct {
	ID                uint   `gorm:"primarykey"`
	UserID            uint   `gorm:"not null;index"`
	Amount            int64  `gorm:"not null;comment:amount in cents"`
	Method            string `gorm:"size:32;not null"`
	ExternalReference string `gorm:"uniqueIndex;size:128;not null"`
	CreatedAt         time.Time
}

func (PaymentModel) TableName() string {
	return "payments"
}
