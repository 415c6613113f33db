package payment

import "context"

type Repository interface {
	// Create returns ErrDuplicatePayment when the external reference was seen before.
	Create(ctx context.Context, p *Payment) error
}
