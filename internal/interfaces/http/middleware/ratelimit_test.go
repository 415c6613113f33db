package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/orris-inc/passage/internal/shared/logger"
)

func newLimitedEngine(client *redis.Client, limit int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(NewRateLimiter(client, limit, time.Minute, logger.NewNop()).Limit())
	engine.GET("/sub/:token", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return engine
}

func request(engine *gin.Engine, remoteAddr string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sub/token", nil)
	req.RemoteAddr = remoteAddr
	engine.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiter_RejectsOverLimitPerClientIP(t *testing.T) {
	mr := miniredis.RunT(t)
	engine := newLimitedEngine(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 2)

	assert.Equal(t, http.StatusOK, request(engine, "203.0.113.1:1000"))
	assert.Equal(t, http.StatusOK, request(engine, "203.0.113.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, request(engine, "203.0.113.1:1002"))

	assert.Equal(t, http.StatusOK, request(engine, "203.0.113.2:1000"))
}

func TestRateLimiter_FailsOpenWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	engine := newLimitedEngine(client, 1)
	mr.Close()

	assert.Equal(t, http.StatusOK, request(engine, "203.0.113.1:1000"))
	assert.Equal(t, http.StatusOK, request(engine, "203.0.113.1:1001"))
}

func TestRateLimiter_ZeroLimitDisables(t *testing.T) {
	engine := newLimitedEngine(nil, 0)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, request(engine, "203.0.113.1:1000"))
	}
}
