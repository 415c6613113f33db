package usecases

import "context"

// TransactionRunner runs fn in one database transaction bound to ctx.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// SyncDispatcher schedules a family sync for a parent after a membership
// change has committed.
type SyncDispatcher interface {
	Dispatch(ctx context.Context, parentUserID uint)
}
