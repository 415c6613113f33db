package valueobjects

// SubscriptionStatus is stored, expiry is derived from expires_at by readers.
type SubscriptionStatus string

const (
	StatusPending SubscriptionStatus = "pending"
	StatusActive  SubscriptionStatus = "active"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

func (s SubscriptionStatus) IsPending() bool {
	return s == StatusPending
}

func (s SubscriptionStatus) IsActive() bool {
	return s == StatusActive
}

// CanTransitionTo reports whether the ledger allows moving from s to target.
// active -> active covers extension and family mirroring.
func (s SubscriptionStatus) CanTransitionTo(target SubscriptionStatus) bool {
	switch s {
	case StatusPending:
		return target == StatusActive || target == StatusPending
	case StatusActive:
		return target == StatusActive
	default:
		return false
	}
}

var ValidStatuses = map[SubscriptionStatus]bool{
	StatusPending: true,
	StatusActive:  true,
}
