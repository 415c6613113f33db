package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orris-inc/passage/internal/domain/device"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/models"
	"github.com/orris-inc/passage/internal/shared/db"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type IPRecordRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewIPRecordRepository(db *gorm.DB, logger logger.Interface) device.Repository {
	return &IPRecordRepositoryImpl{db: db, logger: logger}
}

func (r *IPRecordRepositoryImpl) Upsert(ctx context.Context, record *device.IPRecord) error {
	model := &models.IPRecordModel{
		SubscriptionID: record.SubscriptionID(),
		ClientIP:       record.ClientIP(),
		UserAgent:      record.UserAgent(),
		LastSeenAt:     record.LastSeenAt(),
	}

	err := db.GetTxFromContext(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "subscription_id"}, {Name: "client_ip"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_seen_at", "user_agent"}),
	}).Create(model).Error
	if err != nil {
		r.logger.Errorw("failed to upsert ip record", "subscription_id", record.SubscriptionID(), "error", err)
		return fmt.Errorf("failed to upsert ip record: %w", err)
	}
	return nil
}

func (r *IPRecordRepositoryImpl) ListSince(ctx context.Context, subscriptionID uint, since time.Time) ([]*device.IPRecord, error) {
	var list []*models.IPRecordModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("subscription_id = ? AND last_seen_at >= ?", subscriptionID, since).
		Order("last_seen_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ip records: %w", err)
	}

	records := make([]*device.IPRecord, 0, len(list))
	for _, m := range list {
		records = append(records, device.ReconstructIPRecord(m.SubscriptionID, m.ClientIP, m.UserAgent, m.LastSeenAt.UTC()))
	}
	return records, nil
}

func (r *IPRecordRepositoryImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := db.GetTxFromContext(ctx, r.db).Where("last_seen_at < ?", cutoff).Delete(&models.IPRecordModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete stale ip records: %w", result.Error)
	}
	return result.RowsAffected, nil
}
