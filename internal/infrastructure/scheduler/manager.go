// Package scheduler runs the ledger's periodic sweeps using gocron v2.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/orris-inc/passage/internal/shared/biztime"
	"github.com/orris-inc/passage/internal/shared/logger"
)

const (
	SweepAutoRenew     = "auto-renew"
	SweepAlerts        = "due-alerts"
	SweepDeviceCleanup = "device-cleanup"
)

// ErrSweepBusy is returned by RunOnce when another instance holds the sweep lock.
var ErrSweepBusy = errors.New("sweep is running elsewhere")

// BatchJob processes one sweep and returns the number of items handled.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// BatchJobFunc adapts a function to BatchJob.
type BatchJobFunc func(ctx context.Context) (int, error)

func (f BatchJobFunc) Execute(ctx context.Context) (int, error) { return f(ctx) }

// SweepLocker keeps a sweep from running on two instances at once.
type SweepLocker interface {
	TryAcquire(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, bool, error)
}

// SchedulerManager owns the single gocron scheduler of the process.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	locker    SweepLocker
	logger    logger.Interface

	started   bool
	startedMu sync.Mutex
}

// NewSchedulerManager creates the scheduler in the business timezone. A nil
// locker runs every sweep unguarded, which is fine for a single instance.
func NewSchedulerManager(locker SweepLocker, log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		locker:    locker,
		logger:    log,
	}, nil
}

// RegisterSweep runs job every interval, starting immediately. The job gets
// at most one interval to finish and overlapping runs are rescheduled.
func (m *SchedulerManager) RegisterSweep(name string, interval time.Duration, job BatchJob) error {
	if interval <= 0 {
		return fmt.Errorf("sweep %s: interval must be positive", name)
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			_, _ = m.runSweep(ctx, name, interval, job)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("sweep", name),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("failed to register sweep %s: %w", name, err)
	}

	m.logger.Infow("registered sweep", "name", name, "interval", interval.String())
	return nil
}

// RunOnce executes job immediately under the same lock as the scheduled sweep.
func (m *SchedulerManager) RunOnce(ctx context.Context, name string, timeout time.Duration, job BatchJob) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return m.runSweep(ctx, name, timeout, job)
}

func (m *SchedulerManager) runSweep(ctx context.Context, name string, ttl time.Duration, job BatchJob) (int, error) {
	if m.locker != nil {
		release, acquired, err := m.locker.TryAcquire(ctx, name, ttl)
		if err != nil {
			m.logger.Errorw("failed to acquire sweep lock", "name", name, "error", err)
			return 0, fmt.Errorf("failed to acquire sweep lock: %w", err)
		}
		if !acquired {
			m.logger.Debugw("sweep running elsewhere, skipping", "name", name)
			return 0, ErrSweepBusy
		}
		defer func() {
			if err := release(context.Background()); err != nil {
				m.logger.Warnw("failed to release sweep lock", "name", name, "error", err)
			}
		}()
	}

	startTime := biztime.NowUTC()
	count, err := job.Execute(ctx)
	if err != nil {
		m.logger.Errorw("sweep failed",
			"name", name,
			"error", err,
			"duration", time.Since(startTime),
		)
		return count, err
	}

	if count > 0 {
		m.logger.Infow("sweep processed",
			"name", name,
			"count", count,
			"duration", time.Since(startTime),
		)
	} else {
		m.logger.Debugw("sweep found nothing to do",
			"name", name,
			"duration", time.Since(startTime),
		)
	}
	return count, nil
}

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop waits for running jobs to complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")
	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}
