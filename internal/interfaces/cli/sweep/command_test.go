package sweep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/passage/internal/infrastructure/scheduler"
	"github.com/orris-inc/passage/internal/interfaces/container"
)

func TestSelectSweeps(t *testing.T) {
	all := []container.Sweep{
		{Name: scheduler.SweepAutoRenew},
		{Name: scheduler.SweepAlerts},
		{Name: scheduler.SweepDeviceCleanup},
	}

	got, err := selectSweeps(all, nil)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = selectSweeps(all, []string{scheduler.SweepDeviceCleanup, scheduler.SweepAutoRenew})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, scheduler.SweepDeviceCleanup, got[0].Name)
	assert.Equal(t, scheduler.SweepAutoRenew, got[1].Name)

	_, err = selectSweeps(all, []string{"nightly"})
	assert.Error(t, err)
}
