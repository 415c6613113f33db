package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/passage/internal/domain/family"
	"github.com/orris-inc/passage/internal/infrastructure/repository/repotest"
	"github.com/orris-inc/passage/internal/shared/logger"
)

func TestFamilyInviteRepository_IncrementUseStopsAtMax(t *testing.T) {
	db := repotest.NewDB(t)
	repo := NewFamilyInviteRepository(db, logger.NewNop())
	ctx := context.Background()

	inv, err := family.NewInvite("FAMILY-ABC123", 1, 2, 24*time.Hour, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, inv))

	require.NoError(t, repo.IncrementUse(ctx, inv.ID()))
	require.NoError(t, repo.IncrementUse(ctx, inv.ID()))
	assert.ErrorIs(t, repo.IncrementUse(ctx, inv.ID()), family.ErrInvalidOrExpiredCode)

	loaded, err := repo.GetByCodeForUpdate(ctx, "FAMILY-ABC123")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.UsedCount())

	list, err := repo.ListByParent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
