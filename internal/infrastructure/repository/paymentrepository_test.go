package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/passage/internal/domain/payment"
	"github.com/orris-inc/passage/internal/infrastructure/repository/repotest"
	"github.com/orris-inc/passage/internal/shared/logger"
)

func TestPaymentRepository_DuplicateReference(t *testing.T) {
	db := repotest.NewDB(t)
	repo := NewPaymentRepository(db, logger.NewNop())
	ctx := context.Background()
	now := time.Now().UTC()

	p, err := payment.NewPayment(1, 500, "stars", "tg-charge-1", now)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, p))
	assert.NotZero(t, p.ID())

	dup, err := payment.NewPayment(1, 500, "stars", "tg-charge-1", now)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, dup), payment.ErrDuplicatePayment)
}
