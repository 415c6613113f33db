package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/passage/internal/domain/device"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/models"
	"github.com/orris-inc/passage/internal/infrastructure/repository/repotest"
	"github.com/orris-inc/passage/internal/shared/logger"
)

func TestIPRecordRepository_UpsertRefreshesInPlace(t *testing.T) {
	db := repotest.NewDB(t)
	repo := NewIPRecordRepository(db, logger.NewNop())
	ctx := context.Background()
	first := time.Now().UTC().Add(-10 * time.Minute)
	second := first.Add(5 * time.Minute)

	rec, err := device.NewIPRecord(1, "203.0.113.7", "sing-box/1.9", first)
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, rec))

	rec, err = device.NewIPRecord(1, "203.0.113.7", "sing-box/1.10", second)
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, rec))

	var count int64
	require.NoError(t, db.Model(&models.IPRecordModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	list, err := repo.ListSince(ctx, 1, first.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "sing-box/1.10", list[0].UserAgent())
	assert.WithinDuration(t, second, list[0].LastSeenAt(), time.Millisecond)
}

func TestIPRecordRepository_DeleteOlderThan(t *testing.T) {
	db := repotest.NewDB(t)
	repo := NewIPRecordRepository(db, logger.NewNop())
	ctx := context.Background()
	now := time.Now().UTC()

	old, err := device.NewIPRecord(1, "198.51.100.1", "", now.Add(-2*time.Hour))
	require.NoError(t, err)
	fresh, err := device.NewIPRecord(1, "198.51.100.2", "", now.Add(-time.Minute))
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, old))
	require.NoError(t, repo.Upsert(ctx, fresh))

	deleted, err := repo.DeleteOlderThan(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
