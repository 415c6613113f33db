package user

import "context"

// Repository is the local view of the user directory.
type Repository interface {
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uint) (*User, error)
	// GetByIDForUpdate locks the user row for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id uint) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	ListChildren(ctx context.Context, parentID uint) ([]*User, error)
	// Debit subtracts amount only while the balance covers it, returning
	// ErrInsufficientBalance otherwise.
	Debit(ctx context.Context, id uint, amount int64) error
	Credit(ctx context.Context, id uint, amount int64) error
}
