package usecases

import (
	"context"

	"github.com/orris-inc/passage/internal/shared/goroutine"
	"github.com/orris-inc/passage/internal/shared/logger"
)

// InlineDispatcher runs the sync on the caller's goroutine. Used by the CLI
// and tests where no event bus is running.
type InlineDispatcher struct {
	sync   *SyncFamilyUseCase
	logger logger.Interface
}

func NewInlineDispatcher(sync *SyncFamilyUseCase, logger logger.Interface) *InlineDispatcher {
	return &InlineDispatcher{sync: sync, logger: logger}
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, parentUserID uint) {
	if _, err := d.sync.Execute(ctx, parentUserID); err != nil {
		d.logger.Warnw("inline family sync failed", "error", err, "user_id", parentUserID)
	}
}

// AsyncDispatcher runs the sync in the background, detached from the request
// context so a finished request does not cancel it.
type AsyncDispatcher struct {
	sync   *SyncFamilyUseCase
	logger logger.Interface
}

func NewAsyncDispatcher(sync *SyncFamilyUseCase, logger logger.Interface) *AsyncDispatcher {
	return &AsyncDispatcher{sync: sync, logger: logger}
}

func (d *AsyncDispatcher) Dispatch(ctx context.Context, parentUserID uint) {
	detached := context.WithoutCancel(ctx)
	goroutine.SafeGo(d.logger, "family-sync", func() {
		if _, err := d.sync.Execute(detached, parentUserID); err != nil {
			d.logger.Warnw("async family sync failed", "error", err, "user_id", parentUserID)
		}
	})
}
