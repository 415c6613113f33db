package subscription

import (
	"fmt"
	"time"

	vo "github.com/orris-inc/passage/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/passage/internal/shared/biztime"
)

// NonExpiringHorizon stands in for "no expiry" on zero-day (traffic only) plans.
const NonExpiringHorizon = 100 * 365 * 24 * time.Hour

// Subscription is the ledger aggregate root. A pending subscription carries its
// intended duration as expires_at - created_at until activation.
type Subscription struct {
	id          uint
	userID      uint
	planID      uint
	nodeID      *uint
	status      vo.SubscriptionStatus
	origin      vo.Origin
	credential  vo.Credential
	note        string
	autoRenew   bool
	alertsSent  vo.AlertSet
	isTrial     bool
	usedTraffic uint64
	createdAt   time.Time
	expiresAt   time.Time
	updatedAt   time.Time
}

// DurationFromDays maps a plan day count onto a validity span.
func DurationFromDays(days int) time.Duration {
	if days <= 0 {
		return NonExpiringHorizon
	}
	return biztime.Days(days)
}

// NewPendingSubscription creates an unactivated voucher-like subscription.
func NewPendingSubscription(userID, planID uint, intended time.Duration, origin vo.Origin, now time.Time) (*Subscription, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if planID == 0 {
		return nil, fmt.Errorf("plan ID is required")
	}
	if intended <= 0 {
		return nil, ErrInvalidDuration
	}
	if !vo.ValidOrigins[origin] {
		return nil, fmt.Errorf("invalid origin: %s", origin)
	}

	return &Subscription{
		userID:     userID,
		planID:     planID,
		status:     vo.StatusPending,
		origin:     origin,
		credential: vo.NewCredential(),
		alertsSent: vo.NewAlertSet(),
		createdAt:  now,
		expiresAt:  now.Add(intended),
		updatedAt:  now,
	}, nil
}

// NewActiveSubscription creates a subscription that is usable immediately.
func NewActiveSubscription(userID, planID uint, nodeID *uint, expiresAt time.Time, origin vo.Origin, now time.Time) (*Subscription, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if planID == 0 {
		return nil, fmt.Errorf("plan ID is required")
	}
	if !vo.ValidOrigins[origin] {
		return nil, fmt.Errorf("invalid origin: %s", origin)
	}

	return &Subscription{
		userID:     userID,
		planID:     planID,
		nodeID:     copyUint(nodeID),
		status:     vo.StatusActive,
		origin:     origin,
		credential: vo.NewCredential(),
		alertsSent: vo.NewAlertSet(),
		isTrial:    origin == vo.OriginTrial,
		createdAt:  now,
		expiresAt:  expiresAt,
		updatedAt:  now,
	}, nil
}

// ReconstructSubscription rebuilds a subscription from persistence.
func ReconstructSubscription(
	id, userID, planID uint,
	nodeID *uint,
	status vo.SubscriptionStatus,
	origin vo.Origin,
	credential vo.Credential,
	note string,
	autoRenew bool,
	alertsSent vo.AlertSet,
	isTrial bool,
	usedTraffic uint64,
	createdAt, expiresAt, updatedAt time.Time,
) (*Subscription, error) {
	if id == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	if !vo.ValidStatuses[status] {
		return nil, fmt.Errorf("invalid subscription status: %s", status)
	}
	if !vo.ValidOrigins[origin] {
		return nil, fmt.Errorf("invalid subscription origin: %s", origin)
	}
	if alertsSent == nil {
		alertsSent = vo.NewAlertSet()
	}

	return &Subscription{
		id:          id,
		userID:      userID,
		planID:      planID,
		nodeID:      nodeID,
		status:      status,
		origin:      origin,
		credential:  credential,
		note:        note,
		autoRenew:   autoRenew,
		alertsSent:  alertsSent,
		isTrial:     isTrial,
		usedTraffic: usedTraffic,
		createdAt:   createdAt,
		expiresAt:   expiresAt,
		updatedAt:   updatedAt,
	}, nil
}

func (s *Subscription) ID() uint                      { return s.id }
func (s *Subscription) UserID() uint                  { return s.userID }
func (s *Subscription) PlanID() uint                  { return s.planID }
func (s *Subscription) NodeID() *uint                 { return copyUint(s.nodeID) }
func (s *Subscription) Status() vo.SubscriptionStatus { return s.status }
func (s *Subscription) Origin() vo.Origin             { return s.origin }
func (s *Subscription) Credential() vo.Credential     { return s.credential }
func (s *Subscription) Note() string                  { return s.note }
func (s *Subscription) AutoRenew() bool               { return s.autoRenew }
func (s *Subscription) IsTrial() bool                 { return s.isTrial }
func (s *Subscription) UsedTraffic() uint64           { return s.usedTraffic }
func (s *Subscription) CreatedAt() time.Time          { return s.createdAt }
func (s *Subscription) ExpiresAt() time.Time          { return s.expiresAt }
func (s *Subscription) UpdatedAt() time.Time          { return s.updatedAt }

// AlertsSent returns a copy of the delivered alert markers.
func (s *Subscription) AlertsSent() vo.AlertSet {
	out := vo.NewAlertSet()
	for k := range s.alertsSent {
		out.Add(k)
	}
	return out
}

// SetID sets the subscription ID (only for persistence layer use)
func (s *Subscription) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("subscription ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("subscription ID cannot be zero")
	}
	s.id = id
	return nil
}

func (s *Subscription) SetNote(note string) {
	s.note = note
}

// IntendedDuration is the validity a pending subscription will grant on activation.
func (s *Subscription) IntendedDuration() time.Duration {
	return s.expiresAt.Sub(s.createdAt)
}

func (s *Subscription) IsExpired(now time.Time) bool {
	return !s.expiresAt.After(now)
}

// IsLive reports whether the subscription currently grants access.
func (s *Subscription) IsLive(now time.Time) bool {
	return s.status.IsActive() && !s.IsExpired(now)
}

func (s *Subscription) EnsureOwner(userID uint) error {
	if s.userID != userID {
		return ErrUnauthorized
	}
	return nil
}

func (s *Subscription) ensurePendingOwnedBy(userID uint) error {
	if err := s.EnsureOwner(userID); err != nil {
		return err
	}
	if !s.status.IsPending() {
		return ErrNotPending
	}
	return nil
}

// Activate starts the intended duration from now rather than from purchase time.
func (s *Subscription) Activate(userID uint, now time.Time) error {
	if err := s.ensurePendingOwnedBy(userID); err != nil {
		return err
	}
	intended := s.IntendedDuration()
	s.status = vo.StatusActive
	s.expiresAt = now.Add(intended)
	s.updatedAt = now
	return nil
}

// GiftDays returns the whole days a gift conversion preserves.
func (s *Subscription) GiftDays(userID uint) (int, error) {
	if err := s.ensurePendingOwnedBy(userID); err != nil {
		return 0, err
	}
	days := biztime.WholeDays(s.IntendedDuration())
	if days <= 0 {
		return 0, ErrInvalidDuration
	}
	return days, nil
}

// TransferTo reassigns a pending subscription keeping its credential.
func (s *Subscription) TransferTo(fromUserID, toUserID uint, now time.Time) error {
	if err := s.ensurePendingOwnedBy(fromUserID); err != nil {
		return err
	}
	s.userID = toUserID
	s.updatedAt = now
	return nil
}

// Extend adds d counting from the later of now and the current expiry, so an
// already expired subscription restarts from now.
func (s *Subscription) Extend(d time.Duration, now time.Time) error {
	if !s.status.IsActive() {
		return ErrNotActive
	}
	if d <= 0 {
		return ErrInvalidDuration
	}
	s.expiresAt = biztime.Later(now, s.expiresAt).Add(d)
	s.updatedAt = now
	return nil
}

// MirrorFrom copies plan, node and expiry from parent. It reports whether
// anything changed so repeated syncs write nothing.
func (s *Subscription) MirrorFrom(parent *Subscription, now time.Time) bool {
	changed := false
	if !s.expiresAt.Equal(parent.expiresAt) {
		s.expiresAt = parent.expiresAt
		changed = true
	}
	if s.planID != parent.planID {
		s.planID = parent.planID
		changed = true
	}
	if !equalUintPtr(s.nodeID, parent.nodeID) {
		s.nodeID = copyUint(parent.nodeID)
		changed = true
	}
	if !s.status.IsActive() {
		s.status = vo.StatusActive
		changed = true
	}
	if changed {
		s.updatedAt = now
	}
	return changed
}

// ForceExpire ends access now, keeping the row for history.
func (s *Subscription) ForceExpire(now time.Time) bool {
	if s.IsExpired(now) {
		return false
	}
	s.expiresAt = now
	s.updatedAt = now
	return true
}

func (s *Subscription) AssignNode(nodeID uint, now time.Time) {
	s.nodeID = &nodeID
	s.updatedAt = now
}

func (s *Subscription) ToggleAutoRenew(userID uint, now time.Time) (bool, error) {
	if err := s.EnsureOwner(userID); err != nil {
		return false, err
	}
	s.autoRenew = !s.autoRenew
	s.updatedAt = now
	return s.autoRenew, nil
}

// RecordAlert marks kind as delivered and reports whether it was new.
func (s *Subscription) RecordAlert(kind vo.AlertKind) bool {
	return s.alertsSent.Add(kind)
}

// TrafficUsagePercent returns used/limit in percent, 0 when unlimited.
func (s *Subscription) TrafficUsagePercent(limitBytes uint64) float64 {
	if limitBytes == 0 {
		return 0
	}
	return float64(s.usedTraffic) / float64(limitBytes) * 100
}

func copyUint(p *uint) *uint {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func equalUintPtr(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
