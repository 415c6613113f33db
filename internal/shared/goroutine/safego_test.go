package goroutine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/orris-inc/passage/internal/shared/logger"
)

func TestSafeGo_RunsAndSurvivesPanic(t *testing.T) {
	done := make(chan struct{})
	SafeGo(logger.NewNop(), "panicker", func() {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine did not run")
	}

	ran := make(chan bool, 1)
	SafeGo(logger.NewNop(), "worker", func() { ran <- true })
	assert.True(t, <-ran)
}
