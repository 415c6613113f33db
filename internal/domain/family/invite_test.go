package family

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvite_CheckUsable(t *testing.T) {
	now := time.Now().UTC()
	inv, err := NewInvite("FAMILY-ABC123", 1, 2, 24*time.Hour, now)
	require.NoError(t, err)
	require.NoError(t, inv.CheckUsable(now))
	assert.Equal(t, 2, inv.RemainingUses())

	assert.ErrorIs(t, inv.CheckUsable(now.Add(25*time.Hour)), ErrInvalidOrExpiredCode)

	used := ReconstructInvite(1, "FAMILY-ABC123", 1, 2, 2, now.Add(time.Hour), now)
	assert.ErrorIs(t, used.CheckUsable(now), ErrInvalidOrExpiredCode)
	assert.Zero(t, used.RemainingUses())
}

func TestNewInvite_Validation(t *testing.T) {
	now := time.Now().UTC()
	_, err := NewInvite("FAMILY-ABC123", 1, 0, time.Hour, now)
	assert.ErrorIs(t, err, ErrInvalidMaxUses)
	_, err = NewInvite("", 1, 1, time.Hour, now)
	assert.Error(t, err)
}
