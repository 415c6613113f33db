// Package repotest provides an in-memory sqlite database and fixture helpers
// for repository and use case tests.
package repotest

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	vo "github.com/orris-inc/passage/internal/domain/node/valueobjects"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/models"
)

// NewDB opens a private in-memory database with the full schema. A single
// connection keeps every statement on the same memory database and
// serialises transactions the way row locks would.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func SeedUser(t *testing.T, db *gorm.DB, username string, balance int64) *models.UserModel {
	t.Helper()
	now := time.Now().UTC()
	m := &models.UserModel{
		TelegramID: time.Now().UnixNano(),
		Username:   username,
		Balance:    balance,
		StartedAt:  &now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

// SeedPlan creates a plan with one duration per (days, price) pair.
func SeedPlan(t *testing.T, db *gorm.DB, name string, deviceLimit, trafficGB int, durations ...[2]int64) *models.PlanModel {
	t.Helper()
	m := &models.PlanModel{Name: name, DeviceLimit: deviceLimit, TrafficLimitGB: trafficGB, IsActive: true}
	require.NoError(t, db.Create(m).Error)
	for _, d := range durations {
		dm := models.PlanDurationModel{PlanID: m.ID, Days: int(d[0]), Price: d[1]}
		require.NoError(t, db.Create(&dm).Error)
		m.Durations = append(m.Durations, dm)
	}
	return m
}

func SeedNode(t *testing.T, db *gorm.DB, name, ip string) *models.NodeModel {
	t.Helper()
	m := &models.NodeModel{Name: name, IP: ip, IsActive: true}
	require.NoError(t, db.Create(m).Error)
	return m
}

func SeedInbound(t *testing.T, db *gorm.DB, nodeID uint, protocol vo.Protocol, port int, settings vo.StreamSettings) *models.InboundModel {
	t.Helper()
	raw, err := json.Marshal(settings)
	require.NoError(t, err)
	m := &models.InboundModel{
		NodeID:         nodeID,
		Tag:            string(protocol) + "-in",
		Protocol:       string(protocol),
		Listen:         "0.0.0.0",
		Port:           port,
		StreamSettings: datatypes.JSON(raw),
		IsEnabled:      true,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func Balance(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var m models.UserModel
	require.NoError(t, db.First(&m, userID).Error)
	return m.Balance
}
