package payment

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrDuplicatePayment = errors.New("payment already credited")
	ErrInvalidPayment   = errors.New("invalid payment")
)

// Payment is a settled top-up reported by an external provider.
type Payment struct {
	id                uint
	userID            uint
	amount            int64
	method            string
	externalReference string
	createdAt         time.Time
}

func NewPayment(userID uint, amount int64, method, externalReference string, now time.Time) (*Payment, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user ID is required", ErrInvalidPayment)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidPayment)
	}
	if externalReference == "" {
		return nil, fmt.Errorf("%w: external reference is required", ErrInvalidPayment)
	}
	return &Payment{
		userID:            userID,
		amount:            amount,
		method:            method,
		externalReference: externalReference,
		createdAt:         now,
	}, nil
}

func ReconstructPayment(id, userID uint, amount int64, method, externalReference string, createdAt time.Time) *Payment {
	return &Payment{
		id:                id,
		userID:            userID,
		amount:            amount,
		method:            method,
		externalReference: externalReference,
		createdAt:         createdAt,
	}
}

func (p *Payment) ID() uint                  { return p.id }
func (p *Payment) UserID() uint              { return p.userID }
func (p *Payment) Amount() int64             { return p.amount }
func (p *Payment) Method() string            { return p.method }
func (p *Payment) ExternalReference() string { return p.externalReference }
func (p *Payment) CreatedAt() time.Time      { return p.createdAt }

func (p *Payment) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("payment ID is already set")
	}
	p.id = id
	return nil
}
