package usecases

import (
	"context"
	"errors"

	"github.com/orris-inc/passage/internal/domain/payment"
	"github.com/orris-inc/passage/internal/domain/user"
	"github.com/orris-inc/passage/internal/shared/biztime"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CreditPaymentCommand is a settled payment reported by a provider.
type CreditPaymentCommand struct {
	UserID            uint
	Amount            int64
	Method            string
	ExternalReference string
}

type CreditPaymentResult struct {
	PaymentID uint
	// Duplicate is true when the reference was already credited; the balance
	// is left untouched.
	Duplicate bool
}

// CreditPaymentUseCase records a settled payment and credits the balance in
// one transaction, at most once per external reference.
type CreditPaymentUseCase struct {
	txManager   TransactionRunner
	userRepo    user.Repository
	paymentRepo payment.Repository
	logger      logger.Interface
}

func NewCreditPaymentUseCase(
	txManager TransactionRunner,
	userRepo user.Repository,
	paymentRepo payment.Repository,
	logger logger.Interface,
) *CreditPaymentUseCase {
	return &CreditPaymentUseCase{
		txManager:   txManager,
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
		logger:      logger,
	}
}

func (uc *CreditPaymentUseCase) Execute(ctx context.Context, cmd CreditPaymentCommand) (*CreditPaymentResult, error) {
	p, err := payment.NewPayment(cmd.UserID, cmd.Amount, cmd.Method, cmd.ExternalReference, biztime.NowUTC())
	if err != nil {
		return nil, err
	}

	err = uc.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := uc.paymentRepo.Create(ctx, p); err != nil {
			return err
		}
		return uc.userRepo.Credit(ctx, p.UserID(), p.Amount())
	})
	if errors.Is(err, payment.ErrDuplicatePayment) {
		uc.logger.Infow("payment already credited", "user_id", cmd.UserID, "reference", cmd.ExternalReference)
		return &CreditPaymentResult{Duplicate: true}, nil
	}
	if err != nil {
		uc.logger.Errorw("failed to credit payment", "error", err, "user_id", cmd.UserID, "reference", cmd.ExternalReference)
		return nil, err
	}

	uc.logger.Infow("payment credited",
		"payment_id", p.ID(),
		"user_id", p.UserID(),
		"amount", p.Amount(),
		"method", p.Method(),
	)
	return &CreditPaymentResult{PaymentID: p.ID()}, nil
}
