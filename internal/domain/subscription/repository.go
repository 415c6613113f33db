package subscription

import (
	"context"
	"time"

	vo "github.com/orris-inc/passage/internal/domain/subscription/valueobjects"
)

// Repository persists subscriptions. Reads inside a transaction context see
// the transaction.
type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	Update(ctx context.Context, sub *Subscription) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*Subscription, error)
	// GetByIDForUpdate locks the row for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id uint) (*Subscription, error)
	GetByAccessToken(ctx context.Context, token string) (*Subscription, error)
	GetByUUID(ctx context.Context, uuid string) (*Subscription, error)
	ListByUser(ctx context.Context, userID uint) ([]*Subscription, error)
	// ListLiveByUser returns active, unexpired subscriptions, latest expiry first.
	ListLiveByUser(ctx context.Context, userID uint, now time.Time) ([]*Subscription, error)
	// FindActiveByUserAndPlan locks the active, non family-synced subscription
	// on planID with the latest expiry, expired or not.
	FindActiveByUserAndPlan(ctx context.Context, userID, planID uint) (*Subscription, error)
	ListByUserAndOrigin(ctx context.Context, userID uint, origin vo.Origin) ([]*Subscription, error)
	// ListAutoRenewDue returns live auto-renewing subscriptions expiring before deadline.
	ListAutoRenewDue(ctx context.Context, now, deadline time.Time) ([]*Subscription, error)
	ListLive(ctx context.Context, now time.Time) ([]*Subscription, error)
}

type PlanRepository interface {
	GetByID(ctx context.Context, id uint) (*Plan, error)
	GetDuration(ctx context.Context, durationID uint) (*PlanDuration, error)
}

type GiftCodeRepository interface {
	Create(ctx context.Context, code *GiftCode) error
	// GetByCodeForUpdate locks the code row for the rest of the transaction.
	GetByCodeForUpdate(ctx context.Context, code string) (*GiftCode, error)
	// MarkRedeemed sets redeemed fields only if the code is still unredeemed,
	// returning ErrAlreadyRedeemed otherwise.
	MarkRedeemed(ctx context.Context, id, userID uint, at time.Time) error
}
