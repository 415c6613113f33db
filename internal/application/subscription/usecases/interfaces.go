package usecases

import (
	"context"
	"time"

	vo "github.com/orris-inc/passage/internal/domain/subscription/valueobjects"
)

// TransactionRunner runs fn in one database transaction bound to ctx.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// FamilySyncDispatcher schedules a family sync for a parent user. It is called
// after the triggering transaction has committed and must not block on the
// sync itself failing.
type FamilySyncDispatcher interface {
	Dispatch(ctx context.Context, parentUserID uint)
}

// Notifier delivers sweep results to subscribers.
type Notifier interface {
	NotifyRenewal(ctx context.Context, outcome RenewalOutcome) error
	NotifyAlert(ctx context.Context, alert DueAlert) error
}

type RenewalStatus string

const (
	RenewalSuccess           RenewalStatus = "success"
	RenewalInsufficientFunds RenewalStatus = "insufficient_funds"
	RenewalFailed            RenewalStatus = "failed"
)

// RenewalOutcome reports one subscription's auto-renewal attempt.
type RenewalOutcome struct {
	SubscriptionID uint
	UserID         uint
	Status         RenewalStatus
	Amount         int64
	ExpiresAt      time.Time
	Err            error
}

// DueAlert is one alert emitted by the alert sweep.
type DueAlert struct {
	UserID         uint
	SubscriptionID uint
	Kind           vo.AlertKind
	ExpiresAt      time.Time
}

func dispatchFamilySync(ctx context.Context, d FamilySyncDispatcher, parentUserID uint) {
	if d != nil {
		d.Dispatch(ctx, parentUserID)
	}
}
