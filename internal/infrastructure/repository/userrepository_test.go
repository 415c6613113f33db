package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/passage/internal/domain/user"
	"github.com/orris-inc/passage/internal/infrastructure/repository/repotest"
	"github.com/orris-inc/passage/internal/shared/logger"
)

func TestUserRepository_DebitIsConditional(t *testing.T) {
	db := repotest.NewDB(t)
	repo := NewUserRepository(db, logger.NewNop())
	ctx := context.Background()
	u := repotest.SeedUser(t, db, "alice", 1000)

	require.NoError(t, repo.Debit(ctx, u.ID, 600))
	assert.ErrorIs(t, repo.Debit(ctx, u.ID, 500), user.ErrInsufficientBalance)
	assert.Equal(t, int64(400), repotest.Balance(t, db, u.ID))

	require.NoError(t, repo.Credit(ctx, u.ID, 100))
	assert.Equal(t, int64(500), repotest.Balance(t, db, u.ID))
	assert.ErrorIs(t, repo.Credit(ctx, 999, 100), user.ErrUserNotFound)
}

func TestUserRepository_UpdateLeavesBalanceAlone(t *testing.T) {
	db := repotest.NewDB(t)
	repo := NewUserRepository(db, logger.NewNop())
	ctx := context.Background()
	parent := repotest.SeedUser(t, db, "parent", 0)
	child := repotest.SeedUser(t, db, "child", 300)

	loaded, err := repo.GetByID(ctx, child.ID)
	require.NoError(t, err)

	// a credit lands between read and write
	require.NoError(t, repo.Credit(ctx, child.ID, 200))

	_, err = loaded.LinkParent(parent.ID, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, loaded))

	assert.Equal(t, int64(500), repotest.Balance(t, db, child.ID))
	children, err := repo.ListChildren(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, child.ID, children[0].ID())
}

func TestUserRepository_GetByUsername(t *testing.T) {
	db := repotest.NewDB(t)
	repo := NewUserRepository(db, logger.NewNop())
	repotest.SeedUser(t, db, "bob", 0)

	u, err := repo.GetByUsername(context.Background(), "bob")
	require.NoError(t, err)
	assert.True(t, u.HasStarted())

	_, err = repo.GetByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
