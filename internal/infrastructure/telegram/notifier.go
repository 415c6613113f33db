// Package telegram delivers sweep notifications to users' Telegram chats.
package telegram

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/orris-inc/passage/internal/application/subscription/usecases"
	"github.com/orris-inc/passage/internal/domain/user"
	"github.com/orris-inc/passage/internal/shared/logger"
)

// BotNotifier sends renewal outcomes and alerts to the subscription owner.
type BotNotifier struct {
	bot      *telego.Bot
	userRepo user.Repository
	logger   logger.Interface
}

func NewBotNotifier(token string, userRepo user.Repository, logger logger.Interface, opts ...telego.BotOption) (*BotNotifier, error) {
	bot, err := telego.NewBot(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &BotNotifier{bot: bot, userRepo: userRepo, logger: logger}, nil
}

func (n *BotNotifier) NotifyRenewal(ctx context.Context, outcome usecases.RenewalOutcome) error {
	text, ok := BuildRenewalMessage(outcome)
	if !ok {
		return nil
	}
	return n.send(ctx, outcome.UserID, text)
}

func (n *BotNotifier) NotifyAlert(ctx context.Context, alert usecases.DueAlert) error {
	text, ok := BuildAlertMessage(alert)
	if !ok {
		return nil
	}
	return n.send(ctx, alert.UserID, text)
}

func (n *BotNotifier) send(ctx context.Context, userID uint, text string) error {
	u, err := n.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.IsBanned() {
		return nil
	}

	_, err = n.bot.SendMessage(ctx, tu.Message(tu.ID(u.TelegramID()), text).WithParseMode(telego.ModeHTML))
	if err != nil {
		n.logger.Warnw("failed to send telegram message", "user_id", userID, "error", err)
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	n.logger.Debugw("telegram message sent", "user_id", userID)
	return nil
}

// LogNotifier writes notifications to the log when Telegram is disabled.
type LogNotifier struct {
	logger logger.Interface
}

func NewLogNotifier(logger logger.Interface) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyRenewal(_ context.Context, outcome usecases.RenewalOutcome) error {
	n.logger.Infow("renewal outcome",
		"subscription_id", outcome.SubscriptionID,
		"user_id", outcome.UserID,
		"status", outcome.Status,
		"amount", outcome.Amount,
	)
	return nil
}

func (n *LogNotifier) NotifyAlert(_ context.Context, alert usecases.DueAlert) error {
	n.logger.Infow("subscription alert",
		"subscription_id", alert.SubscriptionID,
		"user_id", alert.UserID,
		"kind", alert.Kind,
	)
	return nil
}
