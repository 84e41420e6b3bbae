package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are checked by middleware.WebSocketCORSCheck
	},
}

// Client is one viewer attached to a session.
type Client struct {
	conn      *websocket.Conn
	id        string
	sessionID string
	send      chan []byte
}

// Hub tracks viewers per session and fans frames out to them.
type Hub struct {
	rooms      map[string]map[string]*Client // sessionID -> viewerID -> Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub. Call Run to process registrations.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes register and unregister requests until stop is closed.
func (h *Hub) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case c := <-h.register:
			h.add(c)
			log.Printf("[WS] Viewer %s joined session %s (viewers=%d)", c.id, c.sessionID, h.ViewerCount(c.sessionID))
		case c := <-h.unregister:
			if h.remove(c) {
				log.Printf("[WS] Viewer %s left session %s (viewers=%d)", c.id, c.sessionID, h.ViewerCount(c.sessionID))
			}
		}
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.sessionID]
	if !ok {
		room = make(map[string]*Client)
		h.rooms[c.sessionID] = room
	}
	room[c.id] = c
}

func (h *Hub) remove(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.sessionID]
	if !ok || room[c.id] != c {
		return false
	}
	delete(room, c.id)
	if len(room) == 0 {
		delete(h.rooms, c.sessionID)
	}
	close(c.send)
	return true
}

// ViewerCount returns how many viewers are attached to a session.
func (h *Hub) ViewerCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

// BroadcastToSession sends a message to every viewer of a session. Viewers
// whose buffer is full miss the message; the next frame supersedes it.
func (h *Hub) BroadcastToSession(sessionID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message for %s: %v", sessionID, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.rooms[sessionID] {
		select {
		case c.send <- data:
		default:
		}
	}
}

// WSMessage is an input message from a viewer.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for viewer %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for viewer %s: %v", c.id, err)
				return
			}
		}
	}
}

// trySend queues a message for this viewer only.
func (c *Client) trySend(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("[WS] Dropped reply for viewer %s (buffer full)", c.id)
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.trySend(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
}
