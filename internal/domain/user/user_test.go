package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser(id uint, balance int64) *User {
	now := time.Now().UTC()
	return ReconstructUser(id, int64(1000+id), "user", balance, false, nil, nil, nil, false, now, now)
}

func TestEnsureCanPay(t *testing.T) {
	u := testUser(1, 1000)
	require.NoError(t, u.EnsureCanPay(1000))
	assert.ErrorIs(t, u.EnsureCanPay(1001), ErrInsufficientBalance)

	u.Ban(time.Now())
	assert.ErrorIs(t, u.EnsureCanPay(1), ErrUserBanned)
}

func TestLinkParent(t *testing.T) {
	now := time.Now().UTC()
	child := testUser(2, 0)

	_, err := child.LinkParent(2, now)
	assert.ErrorIs(t, err, ErrSelfReference)

	changed, err := child.LinkParent(1, now)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = child.LinkParent(1, now)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = child.LinkParent(3, now)
	assert.ErrorIs(t, err, ErrAlreadyLinked)

	child.UnlinkParent(now)
	assert.Nil(t, child.ParentID())
}

func TestMarkTrialUsed(t *testing.T) {
	u := testUser(1, 0)
	require.NoError(t, u.MarkTrialUsed(time.Now()))
	assert.ErrorIs(t, u.MarkTrialUsed(time.Now()), ErrTrialAlreadyUsed)
}
