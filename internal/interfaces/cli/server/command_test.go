package server

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMapEnvToGinMode(t *testing.T) {
	assert.Equal(t, gin.ReleaseMode, mapEnvToGinMode("production"))
	assert.Equal(t, gin.ReleaseMode, mapEnvToGinMode("prod"))
	assert.Equal(t, gin.TestMode, mapEnvToGinMode("testing"))
	assert.Equal(t, gin.DebugMode, mapEnvToGinMode("development"))
	assert.Equal(t, gin.DebugMode, mapEnvToGinMode(""))
}
