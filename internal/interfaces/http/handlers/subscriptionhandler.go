package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	deviceUsecases "github.com/orris-inc/passage/internal/application/device/usecases"
	nodeUsecases "github.com/orris-inc/passage/internal/application/node/usecases"
	"github.com/orris-inc/passage/internal/domain/subscription"
	"github.com/orris-inc/passage/internal/shared/errors"
	"github.com/orris-inc/passage/internal/shared/logger"
	"github.com/orris-inc/passage/internal/shared/utils"
)

var subscriptionErrorMappings = []errors.Mapping{
	{Target: subscription.ErrSubscriptionNotFound, Type: errors.ErrorTypeNotFound, Message: "subscription not found"},
	{Target: subscription.ErrNotActive, Type: errors.ErrorTypePaymentRequired, Message: "subscription is not active"},
	{Target: nodeUsecases.ErrUnsupportedFormat, Type: errors.ErrorTypeBadRequest, Message: "unsupported profile format"},
}

// SubscriptionHandler serves client profiles addressed by access token.
type SubscriptionHandler struct {
	tokenResolver  SubscriptionTokenResolver
	ownerGetter    SubscriptionOwnerGetter
	recordAccessUC RecordAccessExecutor
	profileUC      GenerateClientProfileExecutor
	updateInterval time.Duration
	logger         logger.Interface
}

func NewSubscriptionHandler(
	tokenResolver SubscriptionTokenResolver,
	ownerGetter SubscriptionOwnerGetter,
	recordAccessUC RecordAccessExecutor,
	profileUC GenerateClientProfileExecutor,
	updateInterval time.Duration,
	logger logger.Interface,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		tokenResolver:  tokenResolver,
		ownerGetter:    ownerGetter,
		recordAccessUC: recordAccessUC,
		profileUC:      profileUC,
		updateInterval: updateInterval,
		logger:         logger,
	}
}

// GetProfile handles GET /sub/:token?format=singbox|clash|base64
func (h *SubscriptionHandler) GetProfile(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		utils.ErrorResponseWithError(c, errors.NewValidationError("Subscription token is required"))
		return
	}
	ctx := c.Request.Context()

	sub, err := h.tokenResolver.GetByAccessToken(ctx, token)
	if err != nil {
		utils.ErrorResponseWithError(c, errors.FromDomain(err, subscriptionErrorMappings...))
		return
	}

	owner, err := h.ownerGetter.GetByID(ctx, sub.UserID())
	if err != nil || owner.IsBanned() {
		// Banned owners are indistinguishable from unknown tokens.
		utils.ErrorResponseWithError(c, errors.NewNotFoundError("subscription not found"))
		return
	}

	result, err := h.profileUC.Execute(ctx, nodeUsecases.GenerateClientProfileCommand{
		UserID:         sub.UserID(),
		SubscriptionID: sub.ID(),
		Format:         c.Query("format"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, errors.FromDomain(err, subscriptionErrorMappings...))
		return
	}

	if _, err := h.recordAccessUC.Execute(ctx, deviceUsecases.RecordAccessCommand{
		SubscriptionID: sub.ID(),
		ClientIP:       c.ClientIP(),
		UserAgent:      c.Request.UserAgent(),
	}); err != nil {
		h.logger.Warnw("failed to record subscription access", "subscription_id", sub.ID(), "error", err)
	}

	c.Header("Subscription-Userinfo", fmt.Sprintf("upload=0; download=%d; total=%d; expire=%d",
		result.UsedTraffic, result.TrafficLimit, result.ExpiresAt.Unix()))
	c.Header("Profile-Update-Interval", strconv.Itoa(int(h.updateInterval.Hours())))
	if result.Format == nodeUsecases.FormatClash {
		c.Header("Content-Disposition", "attachment; filename=passage.yaml")
	}
	c.Data(http.StatusOK, result.ContentType, []byte(result.Content))
}
