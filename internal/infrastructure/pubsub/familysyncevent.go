package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/passage/internal/shared/biztime"
	"github.com/orris-inc/passage/internal/shared/goroutine"
	"github.com/orris-inc/passage/internal/shared/logger"
)

const familySyncChannel = "passage:family:sync"

// FamilySyncEvent asks any instance to resync one parent's family.
type FamilySyncEvent struct {
	ParentUserID uint   `json:"parent_user_id"`
	Timestamp    int64  `json:"timestamp"`
	InstanceID   string `json:"instance_id,omitempty"`
}

// FamilySyncHandler is called for each received event.
type FamilySyncHandler func(ctx context.Context, event FamilySyncEvent)

// RedisFamilySyncBus publishes family sync requests after a ledger commit and
// delivers them to the subscriber running the sync.
type RedisFamilySyncBus struct {
	client     *redis.Client
	logger     logger.Interface
	instanceID string
	timeout    time.Duration
}

func NewRedisFamilySyncBus(client *redis.Client, logger logger.Interface) *RedisFamilySyncBus {
	return &RedisFamilySyncBus{
		client:     client,
		logger:     logger,
		instanceID: uuid.NewString(),
		timeout:    5 * time.Second,
	}
}

// Dispatch publishes a sync request. Failures are logged only; the next
// ledger change for the parent triggers another sync.
func (b *RedisFamilySyncBus) Dispatch(ctx context.Context, parentUserID uint) {
	if err := b.Publish(ctx, parentUserID); err != nil {
		b.logger.Warnw("family sync request dropped", "error", err, "user_id", parentUserID)
	}
}

func (b *RedisFamilySyncBus) Publish(ctx context.Context, parentUserID uint) error {
	data, err := json.Marshal(FamilySyncEvent{
		ParentUserID: parentUserID,
		Timestamp:    biztime.NowUTC().Unix(),
		InstanceID:   b.instanceID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal family sync event: %w", err)
	}

	if err := b.client.Publish(ctx, familySyncChannel, data).Err(); err != nil {
		b.logger.Errorw("failed to publish family sync event", "user_id", parentUserID, "error", err)
		return fmt.Errorf("failed to publish family sync event: %w", err)
	}

	b.logger.Debugw("family sync event published", "user_id", parentUserID)
	return nil
}

// Subscribe blocks until ctx is done, handing every event to handler on its
// own goroutine.
func (b *RedisFamilySyncBus) Subscribe(ctx context.Context, handler FamilySyncHandler) error {
	sub := b.client.Subscribe(ctx, familySyncChannel)
	defer sub.Close()

	// wait for the subscription confirmation
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}
	b.logger.Infow("subscribed to family sync events", "channel", familySyncChannel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			b.logger.Infow("family sync subscriber stopped", "reason", ctx.Err())
			return ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				b.logger.Warnw("family sync channel closed")
				return nil
			}

			var event FamilySyncEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warnw("failed to unmarshal family sync event", "payload", msg.Payload, "error", err)
				continue
			}

			goroutine.SafeGo(b.logger, "family-sync-handler", func() {
				hctx, cancel := context.WithTimeout(context.Background(), b.timeout)
				defer cancel()
				handler(hctx, event)
			})
		}
	}
}
