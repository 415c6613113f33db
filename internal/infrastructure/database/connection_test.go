package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/passage/internal/shared/config"
)

func TestOpen_SQLiteMemory(t *testing.T) {
	gdb, err := Open(&config.DatabaseConfig{Driver: "sqlite", Database: ":memory:"})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	require.NoError(t, sqlDB.Close())
}

func TestDialectorFor_RejectsUnknownDriver(t *testing.T) {
	_, err := dialectorFor(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestDialectorFor_Names(t *testing.T) {
	for driver, name := range map[string]string{"mysql": "mysql", "postgres": "postgres", "sqlite": "sqlite"} {
		d, err := dialectorFor(&config.DatabaseConfig{Driver: driver, Database: "passage"})
		require.NoError(t, err)
		assert.Equal(t, name, d.Name())
	}
}
