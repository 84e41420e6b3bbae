package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playpool/billiards/internal/game"
)

// SessionHub is the single hub for all sessions on this instance.
var SessionHub *Hub

var viewerSeq atomic.Uint64

func init() {
	SessionHub = NewHub()
	go SessionHub.Run(nil)
}

// HandleWebSocket attaches a viewer to a running session and streams its
// frames.
func HandleWebSocket(c *gin.Context) {
	sessionID := c.Param("id")

	s, err := game.Manager.GetSession(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:      conn,
		id:        fmt.Sprintf("v%d", viewerSeq.Add(1)),
		sessionID: sessionID,
		send:      make(chan []byte, sendBuffer),
	}

	SessionHub.register <- client
	s.Touch()
	client.trySend(s.Frame())

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		SessionHub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Unexpected close for viewer %s: %v", c.id, err)
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}
		c.handleMessage(msg)
	}
}

// handleMessage processes viewer input.
func (c *Client) handleMessage(msg WSMessage) {
	s, err := game.Manager.GetSession(c.sessionID)
	if err != nil {
		c.sendError("Session not found")
		return
	}
	s.Touch()

	switch msg.Type {
	case "boost":
		events, _, err := game.Manager.Boost(c.sessionID)
		if err != nil {
			if errors.Is(err, game.ErrSessionStopped) {
				c.sendError("Session is stopped")
				return
			}
			c.sendError(err.Error())
			return
		}
		SessionHub.BroadcastToSession(c.sessionID, boostedMessage(c.sessionID, c.id, events))

	case "reset_view":
		// Camera state lives in the renderer.
		c.trySend(map[string]interface{}{
			"type":       "view_reset",
			"session_id": c.sessionID,
		})

	case "get_state":
		c.trySend(s.Frame())

	default:
		c.sendError("Unknown message type")
	}
}

func boostedMessage(sessionID, by string, events interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type":       "boosted",
		"session_id": sessionID,
		"by":         by,
		"events":     events,
	}
}
