package usecases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/orris-inc/passage/internal/domain/subscription"
	"github.com/orris-inc/passage/internal/domain/user"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/models"
	"github.com/orris-inc/passage/internal/infrastructure/repository"
	"github.com/orris-inc/passage/internal/infrastructure/repository/repotest"
	"github.com/orris-inc/passage/internal/shared/db"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type ledgerFixture struct {
	db    *gorm.DB
	tx    *db.TransactionManager
	users user.Repository
	plans subscription.PlanRepository
	subs  subscription.Repository
	gifts subscription.GiftCodeRepository
	sync  *recordingDispatcher
	log   logger.Interface
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	gdb := repotest.NewDB(t)
	log := logger.NewNop()
	return &ledgerFixture{
		db:    gdb,
		tx:    db.NewTransactionManager(gdb),
		users: repository.NewUserRepository(gdb, log),
		plans: repository.NewPlanRepository(gdb),
		subs:  repository.NewSubscriptionRepository(gdb, log),
		gifts: repository.NewGiftCodeRepository(gdb, log),
		sync:  &recordingDispatcher{},
		log:   log,
	}
}

func (f *ledgerFixture) purchase() *PurchaseUseCase {
	return NewPurchaseUseCase(f.tx, f.users, f.plans, f.subs, f.log)
}

func (f *ledgerFixture) activate() *ActivateUseCase {
	return NewActivateUseCase(f.tx, f.subs, f.sync, f.log)
}

func (f *ledgerFixture) extend() *ExtendUseCase {
	return NewExtendUseCase(f.tx, f.users, f.plans, f.subs, f.sync, f.log)
}

func (f *ledgerFixture) reload(t *testing.T, id uint) *subscription.Subscription {
	t.Helper()
	sub, err := f.subs.GetByID(context.Background(), id)
	require.NoError(t, err)
	return sub
}

func (f *ledgerFixture) setSubscription(t *testing.T, id uint, columns map[string]any) {
	t.Helper()
	require.NoError(t, f.db.Model(&models.SubscriptionModel{}).Where("id = ?", id).Updates(columns).Error)
}

func (f *ledgerFixture) countSubscriptions(t *testing.T, userID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.SubscriptionModel{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

type recordingDispatcher struct {
	mu      sync.Mutex
	parents []uint
}

func (d *recordingDispatcher) Dispatch(_ context.Context, parentUserID uint) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.parents = append(d.parents, parentUserID)
}

func (d *recordingDispatcher) calls() []uint {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]uint(nil), d.parents...)
}

type recordingNotifier struct {
	renewals []RenewalOutcome
	alerts   []DueAlert
}

func (n *recordingNotifier) NotifyRenewal(_ context.Context, outcome RenewalOutcome) error {
	n.renewals = append(n.renewals, outcome)
	return nil
}

func (n *recordingNotifier) NotifyAlert(_ context.Context, alert DueAlert) error {
	n.alerts = append(n.alerts, alert)
	return nil
}

const clockSkew = 5 * time.Second
