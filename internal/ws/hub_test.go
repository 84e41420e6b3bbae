package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playpool/billiards/internal/config"
	"github.com/playpool/billiards/internal/game"
)

func TestHubRooms(t *testing.T) {
	h := NewHub()
	a := &Client{id: "a", sessionID: "s1", send: make(chan []byte, 1)}
	b := &Client{id: "b", sessionID: "s1", send: make(chan []byte, 1)}
	other := &Client{id: "c", sessionID: "s2", send: make(chan []byte, 1)}
	h.add(a)
	h.add(b)
	h.add(other)

	if got := h.ViewerCount("s1"); got != 2 {
		t.Errorf("ViewerCount(s1) = %d, want 2", got)
	}

	h.BroadcastToSession("s1", map[string]string{"type": "frame"})
	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			if !strings.Contains(string(msg), `"frame"`) {
				t.Errorf("viewer %s got %s", c.id, msg)
			}
		default:
			t.Errorf("viewer %s got nothing", c.id)
		}
	}
	if len(other.send) != 0 {
		t.Error("broadcast leaked into another session")
	}

	// A full buffer drops the message instead of blocking.
	h.BroadcastToSession("s1", "one")
	h.BroadcastToSession("s1", "two")

	if !h.remove(a) || h.remove(a) {
		t.Error("remove should succeed exactly once")
	}
	h.remove(b)
	if got := h.ViewerCount("s1"); got != 0 {
		t.Errorf("ViewerCount after removal = %d", got)
	}
	if _, ok := h.rooms["s1"]; ok {
		t.Error("empty room not deleted")
	}
}

func newTestManager(t *testing.T) *game.GameManager {
	t.Helper()
	presets, err := config.LoadPresets("")
	if err != nil {
		t.Fatalf("LoadPresets: %v", err)
	}
	cfg := &config.Config{
		FrameRate:     60,
		MaxFrameDelta: 0.15,
		RollFriction:  0.8,
		BoostFactor:   1.5,
		ClampToBounds: true,
		DefaultPreset: "nine_ball",
		MaxSessions:   4,
	}
	gm := game.NewGameManager(context.Background(), nil, nil, cfg, presets)
	gm.SetSink(SessionHub)
	t.Cleanup(gm.StopAll)
	return gm
}

func TestHandleSimEvent(t *testing.T) {
	gm := newTestManager(t)
	s, err := gm.CreateSession(game.CreateOptions{})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	h := NewHub()
	viewer := &Client{id: "v", sessionID: s.ID, send: make(chan []byte, 8)}
	h.add(viewer)

	if handleSimEvent(gm, h, "{not json") {
		t.Error("malformed payload reported as handled")
	}
	if handleSimEvent(gm, h, `{"type":"boost","session_id":"sim_elsewhere"}`) {
		t.Error("event for unknown session reported as handled")
	}
	if !handleSimEvent(gm, h, `{"type":"boost","session_id":"`+s.ID+`"}`) {
		t.Fatal("boost for local session not handled")
	}

	select {
	case msg := <-viewer.send:
		if !strings.Contains(string(msg), `"boosted"`) {
			t.Errorf("viewer got %s, want boosted", msg)
		}
	default:
		t.Error("viewer was not told about the boost")
	}
	if s.Summary().Boosts != 1 {
		t.Errorf("boosts = %d, want 1", s.Summary().Boosts)
	}
}

func TestWebSocketSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gm := newTestManager(t)
	prev := game.Manager
	game.Manager = gm
	t.Cleanup(func() { game.Manager = prev })

	s, err := gm.CreateSession(game.CreateOptions{})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	r := gin.New()
	r.GET("/sessions/:id/ws", HandleWebSocket)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/" + s.ID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readType := func(want string) map[string]interface{} {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				t.Fatalf("waiting for %s: %v", want, err)
			}
			var msg map[string]interface{}
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Fatalf("bad message %s: %v", data, err)
			}
			if msg["type"] == want {
				return msg
			}
		}
	}

	frame := readType("frame")
	if balls, _ := frame["balls"].([]interface{}); len(balls) != 10 {
		t.Errorf("frame has %d balls, want 10", len(balls))
	}

	if err := conn.WriteJSON(WSMessage{Type: "boost"}); err != nil {
		t.Fatalf("write boost: %v", err)
	}
	readType("boosted")

	if err := conn.WriteJSON(WSMessage{Type: "reset_view"}); err != nil {
		t.Fatalf("write reset_view: %v", err)
	}
	readType("view_reset")

	if err := conn.WriteJSON(WSMessage{Type: "fly"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	readType("error")

	if SessionHub.ViewerCount(s.ID) != 1 {
		t.Errorf("ViewerCount = %d, want 1", SessionHub.ViewerCount(s.ID))
	}
}

func TestWebSocketUnknownSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gm := newTestManager(t)
	prev := game.Manager
	game.Manager = gm
	t.Cleanup(func() { game.Manager = prev })

	r := gin.New()
	r.GET("/sessions/:id/ws", HandleWebSocket)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/sim_missing/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial to unknown session succeeded")
	}
	if resp == nil || resp.StatusCode != 404 {
		t.Errorf("expected 404 response, got %v", resp)
	}
}
