package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playpool/billiards/internal/ws"
)

// HandleSessionWebSocket streams a session's frames to a renderer
func HandleSessionWebSocket() gin.HandlerFunc {
	return ws.HandleWebSocket
}
