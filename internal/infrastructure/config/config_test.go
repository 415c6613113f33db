package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsFillMissingSections(t *testing.T) {
	cfg, err := Load("", writeConfig(t, "server:\n  port: 9000\n"))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "GIFT", cfg.Subscription.GiftCodePrefix)
	assert.Equal(t, 30, cfg.Subscription.AutoRenewDays)
	assert.Equal(t, 15*time.Minute, cfg.Subscription.DeviceWindow())
	assert.Equal(t, time.Hour, cfg.Subscription.DeviceRetention())
	assert.Equal(t, time.Hour, cfg.Scheduler.AutoRenewEvery())
	assert.Equal(t, 10*time.Minute, cfg.Scheduler.CleanupEvery())
	assert.Same(t, cfg, Get())
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("PASSAGE_DATABASE_DRIVER", "sqlite")
	t.Setenv("PASSAGE_SUBSCRIPTION_TRIAL_DAYS", "7")

	cfg, err := Load("debug", writeConfig(t, "database:\n  driver: postgres\n"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 7, cfg.Subscription.TrialDays)
	assert.Equal(t, "debug", cfg.Server.Mode)
}

func TestLoad_RejectsInvalidSections(t *testing.T) {
	cases := map[string]string{
		"unknown driver":         "database:\n  driver: oracle\n",
		"lowercase gift prefix":  "subscription:\n  gift_code_prefix: gift\n",
		"telegram without token": "telegram:\n  enabled: true\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load("", writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	_, err := Load("", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
