package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/passage/internal/infrastructure/cache"
	"github.com/orris-inc/passage/internal/shared/logger"
)

func newLockedManager(t *testing.T) (*SchedulerManager, *cache.SweepLock) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	lock := cache.NewSweepLock(client)
	m, err := NewSchedulerManager(lock, logger.NewNop())
	require.NoError(t, err)
	return m, lock
}

func TestRunSweep_SkipsWhileLockHeldElsewhere(t *testing.T) {
	m, lock := newLockedManager(t)
	ctx := context.Background()
	var runs atomic.Int32
	job := BatchJobFunc(func(context.Context) (int, error) {
		runs.Add(1)
		return 1, nil
	})

	release, ok, err := lock.TryAcquire(ctx, SweepAutoRenew, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	m.runSweep(ctx, SweepAutoRenew, time.Minute, job)
	assert.Equal(t, int32(0), runs.Load())

	require.NoError(t, release(ctx))
	m.runSweep(ctx, SweepAutoRenew, time.Minute, job)
	m.runSweep(ctx, SweepAutoRenew, time.Minute, job)
	assert.Equal(t, int32(2), runs.Load(), "lock is released after each run")
}

func TestRunSweep_JobErrorReleasesLock(t *testing.T) {
	m, lock := newLockedManager(t)
	ctx := context.Background()

	m.runSweep(ctx, SweepAlerts, time.Minute, BatchJobFunc(func(context.Context) (int, error) {
		return 0, errors.New("boom")
	}))

	_, ok, err := lock.TryAcquire(ctx, SweepAlerts, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterSweep_RunsImmediately(t *testing.T) {
	m, err := NewSchedulerManager(nil, logger.NewNop())
	require.NoError(t, err)

	ran := make(chan struct{}, 1)
	require.NoError(t, m.RegisterSweep(SweepDeviceCleanup, time.Hour, BatchJobFunc(func(context.Context) (int, error) {
		select {
		case ran <- struct{}{}:
		default:
		}
		return 0, nil
	})))

	m.Start()
	defer func() { assert.NoError(t, m.Stop()) }()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep did not start immediately")
	}
}

func TestRegisterSweep_RejectsNonPositiveInterval(t *testing.T) {
	m, err := NewSchedulerManager(nil, logger.NewNop())
	require.NoError(t, err)

	assert.Error(t, m.RegisterSweep(SweepAlerts, 0, BatchJobFunc(func(context.Context) (int, error) { return 0, nil })))
}

func TestStop_WithoutStartIsNoop(t *testing.T) {
	m, err := NewSchedulerManager(nil, logger.NewNop())
	require.NoError(t, err)
	assert.NoError(t, m.Stop())
}

func TestRunOnce_ReportsBusyLockAndJobResult(t *testing.T) {
	m, lock := newLockedManager(t)
	ctx := context.Background()
	job := BatchJobFunc(func(context.Context) (int, error) { return 3, nil })

	release, ok, err := lock.TryAcquire(ctx, SweepDeviceCleanup, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = m.RunOnce(ctx, SweepDeviceCleanup, time.Minute, job)
	assert.ErrorIs(t, err, ErrSweepBusy)

	require.NoError(t, release(ctx))
	count, err := m.RunOnce(ctx, SweepDeviceCleanup, time.Minute, job)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
