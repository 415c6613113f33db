package handlers

import (
	"context"

	deviceUsecases "github.com/orris-inc/passage/internal/application/device/usecases"
	nodeUsecases "github.com/orris-inc/passage/internal/application/node/usecases"
	"github.com/orris-inc/passage/internal/domain/subscription"
	"github.com/orris-inc/passage/internal/domain/user"
)

type SubscriptionTokenResolver interface {
	GetByAccessToken(ctx context.Context, token string) (*subscription.Subscription, error)
}

type SubscriptionOwnerGetter interface {
	GetByID(ctx context.Context, id uint) (*user.User, error)
}

type RecordAccessExecutor interface {
	Execute(ctx context.Context, cmd deviceUsecases.RecordAccessCommand) (bool, error)
}

type GenerateClientProfileExecutor interface {
	Execute(ctx context.Context, cmd nodeUsecases.GenerateClientProfileCommand) (*nodeUsecases.GenerateClientProfileResult, error)
}
