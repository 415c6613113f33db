package family

import "context"

type InviteRepository interface {
	Create(ctx context.Context, invite *Invite) error
	// GetByCodeForUpdate locks the invite row for the rest of the transaction.
	GetByCodeForUpdate(ctx context.Context, code string) (*Invite, error)
	// IncrementUse bumps used_count while it is below max_uses and returns
	// ErrInvalidOrExpiredCode when no use is left.
	IncrementUse(ctx context.Context, id uint) error
	ListByParent(ctx context.Context, parentID uint) ([]*Invite, error)
}
