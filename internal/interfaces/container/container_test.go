package container

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	familyUsecases "github.com/orris-inc/passage/internal/application/family/usecases"
	subUsecases "github.com/orris-inc/passage/internal/application/subscription/usecases"
	vo "github.com/orris-inc/passage/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/passage/internal/infrastructure/config"
	"github.com/orris-inc/passage/internal/infrastructure/repository/repotest"
	"github.com/orris-inc/passage/internal/infrastructure/scheduler"
	sharedConfig "github.com/orris-inc/passage/internal/shared/config"
	"github.com/orris-inc/passage/internal/shared/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: sharedConfig.ServerConfig{Host: "127.0.0.1", Port: 8080, Mode: "test"},
		Subscription: sharedConfig.SubscriptionConfig{
			GiftCodePrefix:     "GIFT",
			AutoRenewDays:      30,
			TrialDays:          3,
			DeviceWindowMinute: 15,
			DeviceRetainMinute: 60,
			WireGuardSubnet:    "10.8.0",
			ProfileUpdateHours: 12,
		},
		Scheduler: sharedConfig.SchedulerConfig{
			AutoRenewInterval: "30m",
			AlertInterval:     "bogus",
			CleanupInterval:   "5m",
		},
	}
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// linkFamily creates parent and child users joined through an invite.
func linkFamily(t *testing.T, c *Container, gormDB *gorm.DB) (parentID, childID uint) {
	t.Helper()
	ctx := context.Background()
	parent := repotest.SeedUser(t, gormDB, "parent", 0)
	child := repotest.SeedUser(t, gormDB, "child", 0)

	invite, err := c.UseCases.CreateInvite.Execute(ctx, familyUsecases.CreateInviteCommand{ParentUserID: parent.ID})
	require.NoError(t, err)
	_, err = c.UseCases.RedeemInvite.Execute(ctx, familyUsecases.RedeemInviteCommand{ChildUserID: child.ID, Code: invite.Code()})
	require.NoError(t, err)
	return parent.ID, child.ID
}

func familySubscriptions(t *testing.T, c *Container, userID uint) int {
	t.Helper()
	subs, err := c.Repos.Subscriptions.ListByUserAndOrigin(context.Background(), userID, vo.OriginFamilySync)
	require.NoError(t, err)
	return len(subs)
}

func TestSweeps_UseConfiguredIntervalsWithFallback(t *testing.T) {
	c, err := New(testConfig(), repotest.NewDB(t), nil, logger.NewNop())
	require.NoError(t, err)

	sweeps := c.Sweeps()
	require.Len(t, sweeps, 3)
	assert.Equal(t, scheduler.SweepAutoRenew, sweeps[0].Name)
	assert.Equal(t, 30*time.Minute, sweeps[0].Interval)
	assert.Equal(t, time.Hour, sweeps[1].Interval, "invalid interval falls back to the default")
	assert.Equal(t, 5*time.Minute, sweeps[2].Interval)

	for _, s := range sweeps {
		count, err := s.Job.Execute(context.Background())
		require.NoError(t, err, s.Name)
		assert.Zero(t, count, s.Name)
	}
}

func TestNew_BackgroundFamilySyncWithoutRedis(t *testing.T) {
	gormDB := repotest.NewDB(t)
	c, err := New(testConfig(), gormDB, nil, logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.SubscribeFamilySync(context.Background()))

	parentID, childID := linkFamily(t, c, gormDB)
	plan := repotest.SeedPlan(t, gormDB, "Basic", 3, 100, [2]int64{30, 1000})
	repotest.SeedNode(t, gormDB, "fra-1", "203.0.113.10")

	_, err = c.UseCases.AdminGrant.Execute(context.Background(), subUsecases.AdminGrantCommand{UserID: parentID, PlanID: plan.ID, Days: 30})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		subs, err := c.Repos.Subscriptions.ListByUserAndOrigin(context.Background(), childID, vo.OriginFamilySync)
		return err == nil && len(subs) == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestNew_InlineFamilySyncOption(t *testing.T) {
	gormDB := repotest.NewDB(t)
	c, err := New(testConfig(), gormDB, nil, logger.NewNop(), WithInlineFamilySync())
	require.NoError(t, err)

	parentID, childID := linkFamily(t, c, gormDB)
	plan := repotest.SeedPlan(t, gormDB, "Basic", 3, 100, [2]int64{30, 1000})
	repotest.SeedNode(t, gormDB, "fra-1", "203.0.113.10")

	_, err = c.UseCases.AdminGrant.Execute(context.Background(), subUsecases.AdminGrantCommand{UserID: parentID, PlanID: plan.ID, Days: 30})
	require.NoError(t, err)

	assert.Equal(t, 1, familySubscriptions(t, c, childID))
}

func TestSubscribeFamilySync_AppliesBusEvents(t *testing.T) {
	gormDB := repotest.NewDB(t)
	c, err := New(testConfig(), gormDB, newRedis(t), logger.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.SubscribeFamilySync(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	parentID, childID := linkFamily(t, c, gormDB)
	plan := repotest.SeedPlan(t, gormDB, "Basic", 3, 100, [2]int64{30, 1000})
	repotest.SeedNode(t, gormDB, "fra-1", "203.0.113.10")

	// Publishing before the subscriber is confirmed would drop the event.
	require.Eventually(t, func() bool {
		n, err := c.redis.PubSubNumSub(ctx, "passage:family:sync").Result()
		return err == nil && n["passage:family:sync"] == 1
	}, 2*time.Second, 10*time.Millisecond)

	_, err = c.UseCases.AdminGrant.Execute(ctx, subUsecases.AdminGrantCommand{UserID: parentID, PlanID: plan.ID, Days: 30})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		subs, err := c.Repos.Subscriptions.ListByUserAndOrigin(context.Background(), childID, vo.OriginFamilySync)
		return err == nil && len(subs) == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestNewRouter_ServesHealthAndUnknownTokens(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, err := New(testConfig(), repotest.NewDB(t), newRedis(t), logger.NewNop())
	require.NoError(t, err)
	engine := c.NewRouter().GetEngine()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sub/00000000-0000-0000-0000-000000000000", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewScheduler_RegistersEverySweep(t *testing.T) {
	c, err := New(testConfig(), repotest.NewDB(t), newRedis(t), logger.NewNop())
	require.NoError(t, err)

	manager, err := c.NewScheduler()
	require.NoError(t, err)
	assert.NoError(t, manager.Stop())
}
