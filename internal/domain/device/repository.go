package device

import (
	"context"
	"time"
)

type Repository interface {
	// Upsert inserts the record or refreshes last_seen_at and user_agent of the
	// existing (subscription, ip) row.
	Upsert(ctx context.Context, record *IPRecord) error
	ListSince(ctx context.Context, subscriptionID uint, since time.Time) ([]*IPRecord, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
