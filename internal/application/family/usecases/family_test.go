package usecases

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/orris-inc/passage/internal/domain/family"
	"github.com/orris-inc/passage/internal/domain/subscription"
	vo "github.com/orris-inc/passage/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/passage/internal/domain/user"
	"github.com/orris-inc/passage/internal/infrastructure/persistence/models"
	"github.com/orris-inc/passage/internal/infrastructure/repository"
	"github.com/orris-inc/passage/internal/infrastructure/repository/repotest"
	"github.com/orris-inc/passage/internal/shared/db"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type familyFixture struct {
	db      *gorm.DB
	tx      *db.TransactionManager
	users   user.Repository
	subs    subscription.Repository
	invites family.InviteRepository
	sync    *SyncFamilyUseCase
	log     logger.Interface
}

func newFamilyFixture(t *testing.T) *familyFixture {
	t.Helper()
	gdb := repotest.NewDB(t)
	log := logger.NewNop()
	tx := db.NewTransactionManager(gdb)
	users := repository.NewUserRepository(gdb, log)
	subs := repository.NewSubscriptionRepository(gdb, log)
	return &familyFixture{
		db:      gdb,
		tx:      tx,
		users:   users,
		subs:    subs,
		invites: repository.NewFamilyInviteRepository(gdb, log),
		sync:    NewSyncFamilyUseCase(tx, users, subs, log),
		log:     log,
	}
}

func (f *familyFixture) link(t *testing.T, childID, parentID uint) {
	t.Helper()
	require.NoError(t, f.db.Model(&models.UserModel{}).Where("id = ?", childID).Update("parent_id", parentID).Error)
}

func (f *familyFixture) activeSub(t *testing.T, userID, planID uint, nodeID *uint, expiresIn time.Duration, origin vo.Origin) *subscription.Subscription {
	t.Helper()
	now := time.Now().UTC()
	sub, err := subscription.NewActiveSubscription(userID, planID, nodeID, now.Add(expiresIn), origin, now)
	require.NoError(t, err)
	require.NoError(t, f.subs.Create(context.Background(), sub))
	stored, err := f.subs.GetByID(context.Background(), sub.ID())
	require.NoError(t, err)
	return stored
}

func (f *familyFixture) subsOf(t *testing.T, userID uint) []*subscription.Subscription {
	t.Helper()
	list, err := f.subs.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	return list
}

type countingDispatcher struct {
	parents []uint
}

func (d *countingDispatcher) Dispatch(_ context.Context, parentUserID uint) {
	d.parents = append(d.parents, parentUserID)
}

func TestSyncFamily_ChildWithoutSubscriptionGetsMirror(t *testing.T) {
	f := newFamilyFixture(t)
	parent := repotest.SeedUser(t, f.db, "parent", 0)
	child := repotest.SeedUser(t, f.db, "child", 0)
	plan := repotest.SeedPlan(t, f.db, "family", 5, 0)
	node := repotest.SeedNode(t, f.db, "de-1", "203.0.113.10")
	f.link(t, child.ID, parent.ID)
	source := f.activeSub(t, parent.ID, plan.ID, &node.ID, 10*24*time.Hour, vo.OriginUserPurchase)

	res, err := f.sync.Execute(context.Background(), parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)

	owned := f.subsOf(t, child.ID)
	require.Len(t, owned, 1)
	assert.Equal(t, vo.StatusActive, owned[0].Status())
	assert.Equal(t, vo.OriginFamilySync, owned[0].Origin())
	assert.Equal(t, plan.ID, owned[0].PlanID())
	assert.True(t, source.ExpiresAt().Equal(owned[0].ExpiresAt()))
	require.NotNil(t, owned[0].NodeID())
	assert.Equal(t, node.ID, *owned[0].NodeID())
	assert.NotEqual(t, source.Credential().UUID(), owned[0].Credential().UUID())
}

func TestSyncFamily_Idempotent(t *testing.T) {
	f := newFamilyFixture(t)
	parent := repotest.SeedUser(t, f.db, "parent", 0)
	plan := repotest.SeedPlan(t, f.db, "family", 5, 0)
	for _, name := range []string{"kid-a", "kid-b"} {
		kid := repotest.SeedUser(t, f.db, name, 0)
		f.link(t, kid.ID, parent.ID)
	}
	f.activeSub(t, parent.ID, plan.ID, nil, 10*24*time.Hour, vo.OriginUserPurchase)
	ctx := context.Background()

	first, err := f.sync.Execute(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)

	var before []models.SubscriptionModel
	require.NoError(t, f.db.Order("id").Find(&before).Error)

	second, err := f.sync.Execute(ctx, parent.ID)
	require.NoError(t, err)
	assert.Zero(t, second.Writes())

	var after []models.SubscriptionModel
	require.NoError(t, f.db.Order("id").Find(&after).Error)
	require.Len(t, after, len(before))
	for i := range before {
		assert.True(t, before[i].UpdatedAt.Equal(after[i].UpdatedAt), "subscription %d rewritten", before[i].ID)
	}
}

func TestSyncFamily_ConcurrentRunsCreateOneMirrorPerChild(t *testing.T) {
	f := newFamilyFixture(t)
	parent := repotest.SeedUser(t, f.db, "parent", 0)
	plan := repotest.SeedPlan(t, f.db, "family", 5, 0)
	var kids []uint
	for _, name := range []string{"kid-a", "kid-b"} {
		kid := repotest.SeedUser(t, f.db, name, 0)
		f.link(t, kid.ID, parent.ID)
		kids = append(kids, kid.ID)
	}
	f.activeSub(t, parent.ID, plan.ID, nil, 10*24*time.Hour, vo.OriginUserPurchase)

	const runs = 4
	results := make([]SyncResult, runs)
	errs := make([]error, runs)
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.sync.Execute(context.Background(), parent.ID)
		}(i)
	}
	wg.Wait()

	created := 0
	for i := range errs {
		require.NoError(t, errs[i])
		created += results[i].Created
	}
	assert.Equal(t, len(kids), created)
	for _, kid := range kids {
		mirrors, err := f.subs.ListByUserAndOrigin(context.Background(), kid, vo.OriginFamilySync)
		require.NoError(t, err)
		assert.Len(t, mirrors, 1, "child %d", kid)
	}
}

func TestSyncFamily_UnknownParentIsNoop(t *testing.T) {
	f := newFamilyFixture(t)

	res, err := f.sync.Execute(context.Background(), 9999)
	require.NoError(t, err)
	assert.Zero(t, res.Writes())
}

func TestSyncFamily_FollowsParentExtension(t *testing.T) {
	f := newFamilyFixture(t)
	parent := repotest.SeedUser(t, f.db, "parent", 0)
	child := repotest.SeedUser(t, f.db, "child", 0)
	plan := repotest.SeedPlan(t, f.db, "family", 5, 0)
	f.link(t, child.ID, parent.ID)
	source := f.activeSub(t, parent.ID, plan.ID, nil, 10*24*time.Hour, vo.OriginUserPurchase)
	ctx := context.Background()

	_, err := f.sync.Execute(ctx, parent.ID)
	require.NoError(t, err)

	longer := source.ExpiresAt().Add(30 * 24 * time.Hour)
	require.NoError(t, f.db.Model(&models.SubscriptionModel{}).Where("id = ?", source.ID()).Update("expires_at", longer).Error)

	res, err := f.sync.Execute(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Updated: 1}, res)

	owned := f.subsOf(t, child.ID)
	require.Len(t, owned, 1)
	assert.True(t, longer.Equal(owned[0].ExpiresAt()))
}

func TestSyncFamily_SamePlanSubscriptionIsReused(t *testing.T) {
	f := newFamilyFixture(t)
	parent := repotest.SeedUser(t, f.db, "parent", 0)
	child := repotest.SeedUser(t, f.db, "child", 0)
	plan := repotest.SeedPlan(t, f.db, "family", 5, 0)
	f.link(t, child.ID, parent.ID)
	f.activeSub(t, parent.ID, plan.ID, nil, 10*24*time.Hour, vo.OriginUserPurchase)
	own := f.activeSub(t, child.ID, plan.ID, nil, 2*24*time.Hour, vo.OriginUserPurchase)

	res, err := f.sync.Execute(context.Background(), parent.ID)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Updated: 1}, res)

	owned := f.subsOf(t, child.ID)
	require.Len(t, owned, 1)
	assert.Equal(t, own.ID(), owned[0].ID())
	assert.Equal(t, vo.OriginUserPurchase, owned[0].Origin())
}

func TestSyncFamily_ParentWithoutSubscriptionExpiresChildren(t *testing.T) {
	f := newFamilyFixture(t)
	parent := repotest.SeedUser(t, f.db, "parent", 0)
	child := repotest.SeedUser(t, f.db, "child", 0)
	plan := repotest.SeedPlan(t, f.db, "family", 5, 0)
	f.link(t, child.ID, parent.ID)
	source := f.activeSub(t, parent.ID, plan.ID, nil, 10*24*time.Hour, vo.OriginUserPurchase)
	own := f.activeSub(t, child.ID, plan.ID+100, nil, 5*24*time.Hour, vo.OriginUserPurchase)
	ctx := context.Background()

	_, err := f.sync.Execute(ctx, parent.ID)
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&models.SubscriptionModel{}).Where("id = ?", source.ID()).
		Update("expires_at", time.Now().UTC().Add(-time.Minute)).Error)

	res, err := f.sync.Execute(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Expired: 1}, res)

	now := time.Now().UTC()
	for _, sub := range f.subsOf(t, child.ID) {
		if sub.ID() == own.ID() {
			assert.True(t, sub.IsLive(now), "own purchase must survive")
			continue
		}
		assert.False(t, sub.IsLive(now))
	}
	assert.Len(t, f.subsOf(t, child.ID), 2)

	again, err := f.sync.Execute(ctx, parent.ID)
	require.NoError(t, err)
	assert.Zero(t, again.Writes())
}

func TestCreateAndRedeemInvite(t *testing.T) {
	f := newFamilyFixture(t)
	parent := repotest.SeedUser(t, f.db, "parent", 0)
	child := repotest.SeedUser(t, f.db, "child", 0)
	ctx := context.Background()
	dispatcher := &countingDispatcher{}

	invite, err := NewCreateInviteUseCase(f.users, f.invites, f.log).Execute(ctx, CreateInviteCommand{ParentUserID: parent.ID, MaxUses: 1})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^FAMILY-[0-9A-Z]{6}$`), invite.Code())

	redeem := NewRedeemInviteUseCase(f.tx, f.users, f.invites, dispatcher, f.log)
	res, err := redeem.Execute(ctx, RedeemInviteCommand{ChildUserID: child.ID, Code: invite.Code()})
	require.NoError(t, err)
	assert.True(t, res.Linked)
	assert.Equal(t, parent.ID, res.ParentUserID)

	stored, err := f.users.GetByID(ctx, child.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ParentID())
	assert.Equal(t, parent.ID, *stored.ParentID())

	// used up, but the same parent again is still fine
	again, err := redeem.Execute(ctx, RedeemInviteCommand{ChildUserID: child.ID, Code: invite.Code()})
	require.NoError(t, err)
	assert.False(t, again.Linked)
	assert.Equal(t, []uint{parent.ID, parent.ID}, dispatcher.parents)
}

func TestRedeemInvite_Rejections(t *testing.T) {
	f := newFamilyFixture(t)
	parent := repotest.SeedUser(t, f.db, "parent", 0)
	other := repotest.SeedUser(t, f.db, "other-parent", 0)
	linked := repotest.SeedUser(t, f.db, "linked", 0)
	fresh := repotest.SeedUser(t, f.db, "fresh", 0)
	late := repotest.SeedUser(t, f.db, "late", 0)
	f.link(t, linked.ID, other.ID)
	ctx := context.Background()

	create := NewCreateInviteUseCase(f.users, f.invites, f.log)
	invite, err := create.Execute(ctx, CreateInviteCommand{ParentUserID: parent.ID, MaxUses: 1})
	require.NoError(t, err)
	redeem := NewRedeemInviteUseCase(f.tx, f.users, f.invites, nil, f.log)

	_, err = redeem.Execute(ctx, RedeemInviteCommand{ChildUserID: fresh.ID, Code: "FAMILY-NOPE00"})
	assert.ErrorIs(t, err, family.ErrInvalidOrExpiredCode)

	_, err = redeem.Execute(ctx, RedeemInviteCommand{ChildUserID: parent.ID, Code: invite.Code()})
	assert.ErrorIs(t, err, user.ErrSelfReference)

	_, err = redeem.Execute(ctx, RedeemInviteCommand{ChildUserID: linked.ID, Code: invite.Code()})
	assert.ErrorIs(t, err, user.ErrAlreadyLinked)

	_, err = redeem.Execute(ctx, RedeemInviteCommand{ChildUserID: fresh.ID, Code: invite.Code()})
	require.NoError(t, err)

	_, err = redeem.Execute(ctx, RedeemInviteCommand{ChildUserID: late.ID, Code: invite.Code()})
	assert.ErrorIs(t, err, family.ErrInvalidOrExpiredCode)

	stored, err := f.users.GetByID(ctx, late.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ParentID())
}

func TestRemoveMember(t *testing.T) {
	f := newFamilyFixture(t)
	parent := repotest.SeedUser(t, f.db, "parent", 0)
	child := repotest.SeedUser(t, f.db, "child", 0)
	stranger := repotest.SeedUser(t, f.db, "stranger", 0)
	plan := repotest.SeedPlan(t, f.db, "family", 5, 0)
	f.link(t, child.ID, parent.ID)
	f.activeSub(t, parent.ID, plan.ID, nil, 10*24*time.Hour, vo.OriginUserPurchase)
	ctx := context.Background()

	_, err := f.sync.Execute(ctx, parent.ID)
	require.NoError(t, err)

	uc := NewRemoveMemberUseCase(f.tx, f.users, f.subs, f.log)
	assert.ErrorIs(t, uc.Execute(ctx, RemoveMemberCommand{ParentUserID: parent.ID, ChildUserID: stranger.ID}), family.ErrNotAMember)
	require.NoError(t, uc.Execute(ctx, RemoveMemberCommand{ParentUserID: parent.ID, ChildUserID: child.ID}))

	stored, err := f.users.GetByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ParentID())

	live, err := f.subs.ListLiveByUser(ctx, child.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.Empty(t, live)

	res, err := f.sync.Execute(ctx, parent.ID)
	require.NoError(t, err)
	assert.Zero(t, res.Writes())
}

func TestInlineDispatcher(t *testing.T) {
	f := newFamilyFixture(t)
	parent := repotest.SeedUser(t, f.db, "parent", 0)
	child := repotest.SeedUser(t, f.db, "child", 0)
	plan := repotest.SeedPlan(t, f.db, "family", 5, 0)
	f.link(t, child.ID, parent.ID)
	f.activeSub(t, parent.ID, plan.ID, nil, 10*24*time.Hour, vo.OriginUserPurchase)

	NewInlineDispatcher(f.sync, f.log).Dispatch(context.Background(), parent.ID)

	assert.Len(t, f.subsOf(t, child.ID), 1)
}

func TestAsyncDispatcher(t *testing.T) {
	f := newFamilyFixture(t)
	parent := repotest.SeedUser(t, f.db, "parent", 0)
	child := repotest.SeedUser(t, f.db, "child", 0)
	plan := repotest.SeedPlan(t, f.db, "family", 5, 0)
	f.link(t, child.ID, parent.ID)
	f.activeSub(t, parent.ID, plan.ID, nil, 10*24*time.Hour, vo.OriginUserPurchase)

	ctx, cancel := context.WithCancel(context.Background())
	NewAsyncDispatcher(f.sync, f.log).Dispatch(ctx, parent.ID)
	cancel()

	assert.Eventually(t, func() bool {
		var n int64
		f.db.Model(&models.SubscriptionModel{}).Where("user_id = ?", child.ID).Count(&n)
		return n == 1
	}, 2*time.Second, 20*time.Millisecond)
}
