// Package container wires repositories, use cases and background services
// from configuration. Both the HTTP server and the one-shot CLI commands
// build on it.
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	deviceUsecases "github.com/orris-inc/passage/internal/application/device/usecases"
	familyUsecases "github.com/orris-inc/passage/internal/application/family/usecases"
	"github.com/orris-inc/passage/internal/application/node/codec"
	nodeUsecases "github.com/orris-inc/passage/internal/application/node/usecases"
	paymentUsecases "github.com/orris-inc/passage/internal/application/payment/usecases"
	subUsecases "github.com/orris-inc/passage/internal/application/subscription/usecases"
	"github.com/orris-inc/passage/internal/domain/device"
	"github.com/orris-inc/passage/internal/domain/family"
	"github.com/orris-inc/passage/internal/domain/node"
	"github.com/orris-inc/passage/internal/domain/payment"
	"github.com/orris-inc/passage/internal/domain/subscription"
	"github.com/orris-inc/passage/internal/domain/user"
	"github.com/orris-inc/passage/internal/infrastructure/cache"
	"github.com/orris-inc/passage/internal/infrastructure/config"
	"github.com/orris-inc/passage/internal/infrastructure/pubsub"
	"github.com/orris-inc/passage/internal/infrastructure/repository"
	"github.com/orris-inc/passage/internal/infrastructure/scheduler"
	"github.com/orris-inc/passage/internal/infrastructure/telegram"
	httpRouter "github.com/orris-inc/passage/internal/interfaces/http"
	"github.com/orris-inc/passage/internal/interfaces/http/handlers"
	"github.com/orris-inc/passage/internal/interfaces/http/middleware"
	"github.com/orris-inc/passage/internal/shared/db"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type Repositories struct {
	Users         user.Repository
	Plans         subscription.PlanRepository
	Subscriptions subscription.Repository
	GiftCodes     subscription.GiftCodeRepository
	Invites       family.InviteRepository
	Nodes         node.Repository
	IPRecords     device.Repository
	Payments      payment.Repository
}

type UseCases struct {
	Purchase        *subUsecases.PurchaseUseCase
	Activate        *subUsecases.ActivateUseCase
	Extend          *subUsecases.ExtendUseCase
	ConvertToGift   *subUsecases.ConvertToGiftUseCase
	RedeemGift      *subUsecases.RedeemGiftUseCase
	Transfer        *subUsecases.TransferUseCase
	AdminGrant      *subUsecases.AdminGrantUseCase
	AdminExtend     *subUsecases.AdminExtendUseCase
	AdminRefund     *subUsecases.AdminRefundUseCase
	ToggleAutoRenew *subUsecases.ToggleAutoRenewUseCase
	StartTrial      *subUsecases.StartTrialUseCase
	RunAutoRenewals *subUsecases.RunAutoRenewalsUseCase
	CheckDueAlerts  *subUsecases.CheckDueAlertsUseCase

	CreateInvite *familyUsecases.CreateInviteUseCase
	RedeemInvite *familyUsecases.RedeemInviteUseCase
	RemoveMember *familyUsecases.RemoveMemberUseCase
	SyncFamily   *familyUsecases.SyncFamilyUseCase

	SubscriptionLinks *nodeUsecases.GetSubscriptionLinksUseCase
	ClientProfile     *nodeUsecases.GenerateClientProfileUseCase

	RecordAccess *deviceUsecases.RecordAccessUseCase
	DeviceQuery  *deviceUsecases.DeviceQueryUseCase
	CleanupStale *deviceUsecases.CleanupStaleUseCase

	CreditPayment *paymentUsecases.CreditPaymentUseCase
}

// Sweep is one periodic job with its schedule.
type Sweep struct {
	Name     string
	Interval time.Duration
	Job      scheduler.BatchJob
}

// Container holds every component built from one configuration.
type Container struct {
	cfg   *config.Config
	db    *gorm.DB
	redis *redis.Client
	log   logger.Interface

	Repos    *Repositories
	UseCases *UseCases

	familyBus  *pubsub.RedisFamilySyncBus
	notifier   subUsecases.Notifier
	inlineSync bool
}

type Option func(*Container)

// WithInlineFamilySync runs family sync on the caller, with or without Redis.
// One-shot commands use it since no subscriber may be running.
func WithInlineFamilySync() Option {
	return func(c *Container) { c.inlineSync = true }
}

// New wires the container. With a nil redisClient family sync runs in a
// background goroutine of this process and sweeps are not guarded by a
// distributed lock.
func New(cfg *config.Config, gormDB *gorm.DB, redisClient *redis.Client, log logger.Interface, opts ...Option) (*Container, error) {
	c := &Container{
		cfg:   cfg,
		db:    gormDB,
		redis: redisClient,
		log:   log,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Repos = &Repositories{
		Users:         repository.NewUserRepository(gormDB, log),
		Plans:         repository.NewPlanRepository(gormDB),
		Subscriptions: repository.NewSubscriptionRepository(gormDB, log),
		GiftCodes:     repository.NewGiftCodeRepository(gormDB, log),
		Invites:       repository.NewFamilyInviteRepository(gormDB, log),
		Nodes:         repository.NewNodeRepository(gormDB, log),
		IPRecords:     repository.NewIPRecordRepository(gormDB, log),
		Payments:      repository.NewPaymentRepository(gormDB, log),
	}

	notifier, err := c.buildNotifier()
	if err != nil {
		return nil, err
	}
	c.notifier = notifier

	c.UseCases = c.buildUseCases()
	return c, nil
}

func (c *Container) buildNotifier() (subUsecases.Notifier, error) {
	if !c.cfg.Telegram.Enabled {
		return telegram.NewLogNotifier(c.log), nil
	}
	n, err := telegram.NewBotNotifier(c.cfg.Telegram.BotToken, c.Repos.Users, c.log)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram notifier: %w", err)
	}
	return n, nil
}

func (c *Container) buildUseCases() *UseCases {
	r := c.Repos
	log := c.log
	tx := db.NewTransactionManager(c.db)
	subCfg := c.cfg.Subscription

	syncFamily := familyUsecases.NewSyncFamilyUseCase(tx, r.Users, r.Subscriptions, log)

	var dispatcher interface {
		Dispatch(ctx context.Context, parentUserID uint)
	}
	switch {
	case c.inlineSync:
		dispatcher = familyUsecases.NewInlineDispatcher(syncFamily, log)
	case c.redis != nil:
		c.familyBus = pubsub.NewRedisFamilySyncBus(c.redis, log)
		dispatcher = c.familyBus
	default:
		dispatcher = familyUsecases.NewAsyncDispatcher(syncFamily, log)
	}

	registry := codec.NewRegistry()

	runAutoRenewals := subUsecases.NewRunAutoRenewalsUseCase(tx, r.Users, r.Plans, r.Subscriptions, subCfg.AutoRenewDays, dispatcher, log)
	runAutoRenewals.SetNotifier(c.notifier)
	checkDueAlerts := subUsecases.NewCheckDueAlertsUseCase(tx, r.Plans, r.Subscriptions, log)
	checkDueAlerts.SetNotifier(c.notifier)

	return &UseCases{
		Purchase:        subUsecases.NewPurchaseUseCase(tx, r.Users, r.Plans, r.Subscriptions, log),
		Activate:        subUsecases.NewActivateUseCase(tx, r.Subscriptions, dispatcher, log),
		Extend:          subUsecases.NewExtendUseCase(tx, r.Users, r.Plans, r.Subscriptions, dispatcher, log),
		ConvertToGift:   subUsecases.NewConvertToGiftUseCase(tx, r.Subscriptions, r.GiftCodes, subCfg.GiftCodePrefix, log),
		RedeemGift:      subUsecases.NewRedeemGiftUseCase(tx, r.Users, r.GiftCodes, r.Subscriptions, log),
		Transfer:        subUsecases.NewTransferUseCase(tx, r.Users, r.Subscriptions, log),
		AdminGrant:      subUsecases.NewAdminGrantUseCase(tx, r.Users, r.Plans, r.Subscriptions, subUsecases.NewFirstActivePlacement(r.Nodes), dispatcher, log),
		AdminExtend:     subUsecases.NewAdminExtendUseCase(tx, r.Subscriptions, dispatcher, log),
		AdminRefund:     subUsecases.NewAdminRefundUseCase(r.Users, log),
		ToggleAutoRenew: subUsecases.NewToggleAutoRenewUseCase(tx, r.Subscriptions, log),
		StartTrial: subUsecases.NewStartTrialUseCase(tx, r.Users, r.Plans, r.Subscriptions,
			subUsecases.TrialSettings{PlanID: subCfg.TrialPlanID, Days: subCfg.TrialDays}, log),
		RunAutoRenewals: runAutoRenewals,
		CheckDueAlerts:  checkDueAlerts,

		CreateInvite: familyUsecases.NewCreateInviteUseCase(r.Users, r.Invites, log),
		RedeemInvite: familyUsecases.NewRedeemInviteUseCase(tx, r.Users, r.Invites, dispatcher, log),
		RemoveMember: familyUsecases.NewRemoveMemberUseCase(tx, r.Users, r.Subscriptions, log),
		SyncFamily:   syncFamily,

		SubscriptionLinks: nodeUsecases.NewGetSubscriptionLinksUseCase(r.Subscriptions, r.Nodes, r.Users, registry, subCfg.WireGuardSubnet, log),
		ClientProfile:     nodeUsecases.NewGenerateClientProfileUseCase(r.Subscriptions, r.Plans, r.Nodes, r.Users, registry, subCfg.WireGuardSubnet, log),

		RecordAccess: deviceUsecases.NewRecordAccessUseCase(r.IPRecords, r.Nodes, log),
		DeviceQuery:  deviceUsecases.NewDeviceQueryUseCase(r.IPRecords, r.Subscriptions, r.Plans, subCfg.DeviceWindow(), log),
		CleanupStale: deviceUsecases.NewCleanupStaleUseCase(r.IPRecords, subCfg.DeviceRetention(), log),

		CreditPayment: paymentUsecases.NewCreditPaymentUseCase(tx, r.Users, r.Payments, log),
	}
}

// Sweeps lists the periodic jobs in registration order.
func (c *Container) Sweeps() []Sweep {
	uc := c.UseCases
	sched := c.cfg.Scheduler

	return []Sweep{
		{
			Name:     scheduler.SweepAutoRenew,
			Interval: sched.AutoRenewEvery(),
			Job: scheduler.BatchJobFunc(func(ctx context.Context) (int, error) {
				outcomes, err := uc.RunAutoRenewals.Execute(ctx)
				return len(outcomes), err
			}),
		},
		{
			Name:     scheduler.SweepAlerts,
			Interval: sched.AlertEvery(),
			Job: scheduler.BatchJobFunc(func(ctx context.Context) (int, error) {
				alerts, err := uc.CheckDueAlerts.Execute(ctx)
				return len(alerts), err
			}),
		},
		{
			Name:     scheduler.SweepDeviceCleanup,
			Interval: sched.CleanupEvery(),
			Job: scheduler.BatchJobFunc(func(ctx context.Context) (int, error) {
				removed, err := uc.CleanupStale.Execute(ctx)
				return int(removed), err
			}),
		},
	}
}

// NewScheduler builds a scheduler with every sweep registered.
func (c *Container) NewScheduler() (*scheduler.SchedulerManager, error) {
	var locker scheduler.SweepLocker
	if c.redis != nil {
		locker = cache.NewSweepLock(c.redis)
	}

	manager, err := scheduler.NewSchedulerManager(locker, c.log)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	for _, s := range c.Sweeps() {
		if err := manager.RegisterSweep(s.Name, s.Interval, s.Job); err != nil {
			return nil, err
		}
	}
	return manager, nil
}

// SubscribeFamilySync runs SyncFamily for every event on the bus until ctx
// is done. Without Redis there is no bus and it returns immediately.
func (c *Container) SubscribeFamilySync(ctx context.Context) error {
	if c.familyBus == nil {
		return nil
	}
	return c.familyBus.Subscribe(ctx, func(ctx context.Context, event pubsub.FamilySyncEvent) {
		result, err := c.UseCases.SyncFamily.Execute(ctx, event.ParentUserID)
		if err != nil {
			c.log.Errorw("family sync from event failed", "user_id", event.ParentUserID, "error", err)
			return
		}
		c.log.Debugw("family sync from event completed", "user_id", event.ParentUserID, "writes", result.Writes())
	})
}

// NewRouter builds the HTTP surface. The rate limiter needs Redis.
func (c *Container) NewRouter() *httpRouter.Router {
	var limiter *middleware.RateLimiter
	if c.redis != nil {
		limiter = middleware.NewRateLimiter(c.redis, c.cfg.Server.RateLimitPerMinute, time.Minute, c.log)
	}

	subscriptionHandler := handlers.NewSubscriptionHandler(
		c.Repos.Subscriptions,
		c.Repos.Users,
		c.UseCases.RecordAccess,
		c.UseCases.ClientProfile,
		c.cfg.Subscription.ProfileUpdateInterval(),
		c.log,
	)

	router := httpRouter.NewRouter(subscriptionHandler, limiter, c.log)
	router.SetupRoutes()
	return router
}
