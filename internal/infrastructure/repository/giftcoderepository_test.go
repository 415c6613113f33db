package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/passage/internal/domain/subscription"
	"github.com/orris-inc/passage/internal/infrastructure/repository/repotest"
	"github.com/orris-inc/passage/internal/shared/logger"
)

func TestGiftCodeRepository_MarkRedeemedOnce(t *testing.T) {
	db := repotest.NewDB(t)
	repo := NewGiftCodeRepository(db, logger.NewNop())
	ctx := context.Background()
	now := time.Now().UTC()

	code, err := subscription.NewGiftCode("GIFT-A1B2C3D4", 1, 30, 5, now)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, code))

	loaded, err := repo.GetByCodeForUpdate(ctx, "GIFT-A1B2C3D4")
	require.NoError(t, err)
	assert.False(t, loaded.IsRedeemed())

	require.NoError(t, repo.MarkRedeemed(ctx, loaded.ID(), 7, now))
	assert.ErrorIs(t, repo.MarkRedeemed(ctx, loaded.ID(), 8, now), subscription.ErrAlreadyRedeemed)

	again, err := repo.GetByCodeForUpdate(ctx, "GIFT-A1B2C3D4")
	require.NoError(t, err)
	require.NotNil(t, again.RedeemedBy())
	assert.Equal(t, uint(7), *again.RedeemedBy())

	_, err = repo.GetByCodeForUpdate(ctx, "GIFT-00000000")
	assert.ErrorIs(t, err, subscription.ErrGiftCodeNotFound)
}
