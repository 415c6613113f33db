package subscription

import (
	"errors"
	"fmt"
)

var (
	ErrSubscriptionNotFound   = errors.New("subscription not found")
	ErrPlanNotFound           = errors.New("plan not found")
	ErrDurationNotFound       = errors.New("plan duration not found")
	ErrPlanInactive           = errors.New("plan inactive")
	ErrUnauthorized           = errors.New("subscription belongs to another user")
	ErrNotPending             = errors.New("subscription is not pending")
	ErrNotActive              = errors.New("subscription is not active")
	ErrInvalidStateTransition = errors.New("invalid subscription state transition")
	ErrGiftCodeNotFound       = errors.New("gift code not found")
	ErrInvalidOrExpiredCode   = errors.New("code is invalid or expired")
	ErrAlreadyRedeemed        = errors.New("code already redeemed")
	ErrTargetNotFound         = errors.New("transfer target not found")
	ErrNoNodesAvailable       = errors.New("no nodes available")
	ErrInvalidDuration        = errors.New("invalid duration")
	ErrTrialPlanNotConfigured = errors.New("trial plan not configured")
)

func ErrInvalidTransition(from, to string) error {
	return fmt.Errorf("%w: from %s to %s", ErrInvalidStateTransition, from, to)
}
