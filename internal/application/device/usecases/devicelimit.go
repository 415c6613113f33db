package usecases

import (
	"context"
	"time"

	"github.com/orris-inc/passage/internal/domain/device"
	"github.com/orris-inc/passage/internal/domain/subscription"
	"github.com/orris-inc/passage/internal/shared/biztime"
	"github.com/orris-inc/passage/internal/shared/logger"
)

// DefaultActiveWindow is how recently an address must have been seen to count
// as an active device.
const DefaultActiveWindow = 15 * time.Minute

// DeviceQueryUseCase answers device questions for one subscription. Limits
// are advisory: callers decide whether to block or warn.
type DeviceQueryUseCase struct {
	recordRepo       device.Repository
	subscriptionRepo subscription.Repository
	planRepo         subscription.PlanRepository
	window           time.Duration
	logger           logger.Interface
}

func NewDeviceQueryUseCase(
	recordRepo device.Repository,
	subscriptionRepo subscription.Repository,
	planRepo subscription.PlanRepository,
	window time.Duration,
	logger logger.Interface,
) *DeviceQueryUseCase {
	if window <= 0 {
		window = DefaultActiveWindow
	}
	return &DeviceQueryUseCase{
		recordRepo:       recordRepo,
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		window:           window,
		logger:           logger,
	}
}

// ActiveDeviceIPs lists addresses seen within the window, most recent first.
func (uc *DeviceQueryUseCase) ActiveDeviceIPs(ctx context.Context, subscriptionID uint) ([]*device.IPRecord, error) {
	return uc.recordRepo.ListSince(ctx, subscriptionID, biztime.NowUTC().Add(-uc.window))
}

// DeviceLimit returns the plan's device limit, 0 meaning unlimited.
func (uc *DeviceQueryUseCase) DeviceLimit(ctx context.Context, subscriptionID uint) (int, error) {
	sub, err := uc.subscriptionRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		return 0, err
	}
	plan, err := uc.planRepo.GetByID(ctx, sub.PlanID())
	if err != nil {
		return 0, err
	}
	return plan.DeviceLimit(), nil
}

type DeviceLimitStatus struct {
	Limit  int
	Active int
	// Exceeded is true when clientIP would be one device too many.
	Exceeded bool
}

// CheckDeviceLimit evaluates whether a fetch from clientIP fits the limit.
// An address already counted as active never exceeds it.
func (uc *DeviceQueryUseCase) CheckDeviceLimit(ctx context.Context, subscriptionID uint, clientIP string) (*DeviceLimitStatus, error) {
	limit, err := uc.DeviceLimit(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	active, err := uc.ActiveDeviceIPs(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	status := &DeviceLimitStatus{Limit: limit, Active: len(active)}
	if limit == 0 {
		return status, nil
	}
	for _, r := range active {
		if r.ClientIP() == clientIP {
			return status, nil
		}
	}
	status.Exceeded = len(active) >= limit
	if status.Exceeded {
		uc.logger.Infow("device limit exceeded",
			"subscription_id", subscriptionID,
			"limit", limit,
			"active", len(active),
		)
	}
	return status, nil
}
