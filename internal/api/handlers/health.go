package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playpool/billiards/internal/game"
)

var startTime = time.Now()

const version = "1.0.0"

// HealthCheck returns server health status
func HealthCheck(c *gin.Context) {
	running := 0
	if game.Manager != nil {
		running = len(game.Manager.ListSessions())
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "billiards-sim",
		"version":  version,
		"uptime":   time.Since(startTime).String(),
		"sessions": running,
	})
}
