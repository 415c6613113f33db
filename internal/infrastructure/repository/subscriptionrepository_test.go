package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/passage/internal/domain/subscription"
	vo "github.com/orris-inc/passage/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/passage/internal/infrastructure/repository/repotest"
	"github.com/orris-inc/passage/internal/shared/logger"
)

func TestSubscriptionRepository_LiveQueries(t *testing.T) {
	db := repotest.NewDB(t)
	repo := NewSubscriptionRepository(db, logger.NewNop())
	ctx := context.Background()
	now := time.Now().UTC()
	u := repotest.SeedUser(t, db, "alice", 0)

	soon, err := subscription.NewActiveSubscription(u.ID, 1, nil, now.Add(12*time.Hour), vo.OriginUserPurchase, now)
	require.NoError(t, err)
	_, err = soon.ToggleAutoRenew(u.ID, now)
	require.NoError(t, err)
	later, err := subscription.NewActiveSubscription(u.ID, 2, nil, now.Add(20*24*time.Hour), vo.OriginAdminGrant, now)
	require.NoError(t, err)
	lapsed, err := subscription.NewActiveSubscription(u.ID, 1, nil, now.Add(-time.Hour), vo.OriginUserPurchase, now.Add(-48*time.Hour))
	require.NoError(t, err)
	pending, err := subscription.NewPendingSubscription(u.ID, 1, 30*24*time.Hour, vo.OriginUserPurchase, now)
	require.NoError(t, err)

	for _, s := range []*subscription.Subscription{soon, later, lapsed, pending} {
		require.NoError(t, repo.Create(ctx, s))
	}

	live, err := repo.ListLiveByUser(ctx, u.ID, now)
	require.NoError(t, err)
	require.Len(t, live, 2)
	assert.Equal(t, later.ID(), live[0].ID())

	onPlan, err := repo.FindActiveByUserAndPlan(ctx, u.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, soon.ID(), onPlan.ID())

	due, err := repo.ListAutoRenewDue(ctx, now, now.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, soon.ID(), due[0].ID())

	_, err = repo.FindActiveByUserAndPlan(ctx, u.ID, 3)
	assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
}

func TestSubscriptionRepository_UpdateAndDelete(t *testing.T) {
	db := repotest.NewDB(t)
	repo := NewSubscriptionRepository(db, logger.NewNop())
	ctx := context.Background()
	now := time.Now().UTC()
	u := repotest.SeedUser(t, db, "alice", 0)

	sub, err := subscription.NewPendingSubscription(u.ID, 1, 30*24*time.Hour, vo.OriginGiftRedemption, now)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, sub))

	require.NoError(t, sub.Activate(u.ID, now))
	sub.RecordAlert(vo.AlertExpiry3Days)
	require.NoError(t, repo.Update(ctx, sub))

	loaded, err := repo.GetByAccessToken(ctx, sub.Credential().AccessToken())
	require.NoError(t, err)
	assert.Equal(t, vo.StatusActive, loaded.Status())
	assert.True(t, loaded.AlertsSent().Has(vo.AlertExpiry3Days))
	assert.WithinDuration(t, sub.ExpiresAt(), loaded.ExpiresAt(), time.Millisecond)

	require.NoError(t, repo.Delete(ctx, sub.ID()))
	_, err = repo.GetByID(ctx, sub.ID())
	assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, sub.ID()), subscription.ErrSubscriptionNotFound)
}
