package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/orris-inc/passage/internal/domain/device"
	"github.com/orris-inc/passage/internal/domain/node"
	"github.com/orris-inc/passage/internal/shared/biztime"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type RecordAccessCommand struct {
	SubscriptionID uint
	ClientIP       string
	UserAgent      string
}

// RecordAccessUseCase remembers which addresses fetched a subscription.
// Fetches from the fleet's own nodes are not client devices and are dropped.
type RecordAccessUseCase struct {
	recordRepo device.Repository
	nodeRepo   node.Repository
	logger     logger.Interface
}

func NewRecordAccessUseCase(recordRepo device.Repository, nodeRepo node.Repository, logger logger.Interface) *RecordAccessUseCase {
	return &RecordAccessUseCase{
		recordRepo: recordRepo,
		nodeRepo:   nodeRepo,
		logger:     logger,
	}
}

// Execute reports whether a record was written.
func (uc *RecordAccessUseCase) Execute(ctx context.Context, cmd RecordAccessCommand) (bool, error) {
	ip := strings.TrimSpace(cmd.ClientIP)
	if !device.IsRecordableIP(ip) {
		return false, nil
	}

	nodeIPs, err := uc.nodeRepo.ListIPs(ctx)
	if err != nil {
		uc.logger.Errorw("failed to load node IPs", "error", err)
		return false, fmt.Errorf("failed to load node IPs: %w", err)
	}
	for _, nodeIP := range nodeIPs {
		if strings.TrimSpace(nodeIP) == ip {
			uc.logger.Debugw("skipping node self traffic", "subscription_id", cmd.SubscriptionID, "ip", ip)
			return false, nil
		}
	}

	record, err := device.NewIPRecord(cmd.SubscriptionID, ip, cmd.UserAgent, biztime.NowUTC())
	if err != nil {
		return false, err
	}
	if err := uc.recordRepo.Upsert(ctx, record); err != nil {
		uc.logger.Errorw("failed to record device access", "error", err, "subscription_id", cmd.SubscriptionID)
		return false, fmt.Errorf("failed to record device access: %w", err)
	}
	return true, nil
}
