// Package http assembles the gin engine that serves client profile downloads.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/passage/internal/interfaces/http/handlers"
	"github.com/orris-inc/passage/internal/interfaces/http/middleware"
	"github.com/orris-inc/passage/internal/shared/logger"
)

type Router struct {
	engine              *gin.Engine
	subscriptionHandler *handlers.SubscriptionHandler
	rateLimiter         *middleware.RateLimiter
	logger              logger.Interface
}

// NewRouter builds the engine. rateLimiter may be nil.
func NewRouter(
	subscriptionHandler *handlers.SubscriptionHandler,
	rateLimiter *middleware.RateLimiter,
	logger logger.Interface,
) *Router {
	engine := gin.New()
	engine.Use(middleware.Recovery(logger), middleware.Logger(logger))

	return &Router{
		engine:              engine,
		subscriptionHandler: subscriptionHandler,
		rateLimiter:         rateLimiter,
		logger:              logger,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	sub := r.engine.Group("/sub")
	if r.rateLimiter != nil {
		sub.Use(r.rateLimiter.Limit())
	}
	sub.GET("/:token", r.subscriptionHandler.GetProfile)
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
