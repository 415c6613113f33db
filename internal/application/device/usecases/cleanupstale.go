package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/passage/internal/domain/device"
	"github.com/orris-inc/passage/internal/shared/biztime"
	"github.com/orris-inc/passage/internal/shared/logger"
)

const DefaultRetention = time.Hour

type CleanupStaleUseCase struct {
	recordRepo device.Repository
	retention  time.Duration
	logger     logger.Interface
}

func NewCleanupStaleUseCase(recordRepo device.Repository, retention time.Duration, logger logger.Interface) *CleanupStaleUseCase {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &CleanupStaleUseCase{
		recordRepo: recordRepo,
		retention:  retention,
		logger:     logger,
	}
}

func (uc *CleanupStaleUseCase) Execute(ctx context.Context) (int64, error) {
	deleted, err := uc.recordRepo.DeleteOlderThan(ctx, biztime.NowUTC().Add(-uc.retention))
	if err != nil {
		uc.logger.Errorw("failed to clean up device records", "error", err)
		return 0, fmt.Errorf("failed to clean up device records: %w", err)
	}
	if deleted > 0 {
		uc.logger.Infow("stale device records removed", "count", deleted)
	}
	return deleted, nil
}
