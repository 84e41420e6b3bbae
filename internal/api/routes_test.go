package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/playpool/billiards/internal/admin"
	"github.com/playpool/billiards/internal/config"
	"github.com/playpool/billiards/internal/game"
)

func setupTestRouter(t *testing.T, keyHash string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	presets, err := config.LoadPresets("")
	if err != nil {
		t.Fatalf("LoadPresets: %v", err)
	}
	cfg := &config.Config{
		Environment:     "test",
		FrontendURL:     "http://localhost:5173",
		JWTSecret:       "test-secret",
		OperatorKeyHash: keyHash,
		TokenTTLMinutes: 5,
		FrameRate:       60,
		MaxFrameDelta:   0.15,
		RollFriction:    0.8,
		BoostFactor:     1.5,
		ClampToBounds:   true,
		DefaultPreset:   "eight_ball",
		MaxSessions:     2,
	}

	prev := game.Manager
	game.InitializeManager(context.Background(), nil, nil, cfg, presets)
	gm := game.Manager
	t.Cleanup(func() {
		gm.StopAll()
		game.Manager = prev
	})

	r := gin.New()
	SetupRoutes(r, cfg, presets)
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func TestSessionLifecycle(t *testing.T) {
	r := setupTestRouter(t, "")

	w := doJSON(r, http.MethodPost, "/api/v1/sessions", map[string]interface{}{"preset": "nine_ball", "seed": 7}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	session := decode(t, w)["session"].(map[string]interface{})
	id := session["id"].(string)
	if session["ball_count"].(float64) != 10 || session["seed"].(float64) != 7 {
		t.Errorf("unexpected session: %v", session)
	}

	w = doJSON(r, http.MethodGet, "/api/v1/sessions/"+id, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: %d %s", w.Code, w.Body.String())
	}
	frame := decode(t, w)["frame"].(map[string]interface{})
	if balls := frame["balls"].([]interface{}); len(balls) != 10 {
		t.Errorf("frame has %d balls", len(balls))
	}

	w = doJSON(r, http.MethodGet, "/api/v1/sessions/"+id+"/stats", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("stats: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodPost, "/api/v1/sessions/"+id+"/boost", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("boost: %d %s", w.Code, w.Body.String())
	}
	if events := decode(t, w)["events"].([]interface{}); len(events) != 10 {
		t.Errorf("boost returned %d events", len(events))
	}

	w = doJSON(r, http.MethodGet, "/api/v1/sessions", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d %s", w.Code, w.Body.String())
	}
	list := decode(t, w)
	listed, _ := list["sessions"].([]interface{})
	if list["count"].(float64) != 1 || len(listed) != 1 {
		t.Fatalf("list: %s", w.Body.String())
	}
	if first := listed[0].(map[string]interface{}); first["id"] != id || first["boosts"].(float64) != 1 {
		t.Errorf("listed session = %v, want %s with one boost", first, id)
	}

	w = doJSON(r, http.MethodDelete, "/api/v1/sessions/"+id, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("stop: %d %s", w.Code, w.Body.String())
	}
	w = doJSON(r, http.MethodGet, "/api/v1/sessions/"+id, nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("get after stop: %d", w.Code)
	}
}

func TestSessionErrors(t *testing.T) {
	r := setupTestRouter(t, "")

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"unknown preset", http.MethodPost, "/api/v1/sessions", map[string]string{"preset": "croquet"}, http.StatusBadRequest},
		{"bad body", http.MethodPost, "/api/v1/sessions", "not an object", http.StatusBadRequest},
		{"missing session", http.MethodGet, "/api/v1/sessions/sim_missing", nil, http.StatusNotFound},
		{"boost missing", http.MethodPost, "/api/v1/sessions/sim_missing/boost", nil, http.StatusNotFound},
		{"stop missing", http.MethodDelete, "/api/v1/sessions/sim_missing", nil, http.StatusNotFound},
		{"history without db", http.MethodGet, "/api/v1/sessions/history", nil, http.StatusNotImplemented},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, tt.method, tt.path, tt.body, "")
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}

	for i := 0; i < 2; i++ {
		if w := doJSON(r, http.MethodPost, "/api/v1/sessions", nil, ""); w.Code != http.StatusCreated {
			t.Fatalf("create %d: %d", i, w.Code)
		}
	}
	if w := doJSON(r, http.MethodPost, "/api/v1/sessions", nil, ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("over capacity: %d", w.Code)
	}
}

func TestPresetsAndHealth(t *testing.T) {
	r := setupTestRouter(t, "")

	w := doJSON(r, http.MethodGet, "/api/v1/presets", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("presets: %d", w.Code)
	}
	if presets := decode(t, w)["presets"].([]interface{}); len(presets) < 4 {
		t.Errorf("got %d presets", len(presets))
	}

	w = doJSON(r, http.MethodGet, "/api/v1/health", nil, "")
	if w.Code != http.StatusOK || decode(t, w)["status"] != "ok" {
		t.Errorf("health: %d %s", w.Code, w.Body.String())
	}
}

func TestOperatorAuth(t *testing.T) {
	hash, err := admin.HashOperatorKey("table-key")
	if err != nil {
		t.Fatal(err)
	}
	r := setupTestRouter(t, hash)

	if w := doJSON(r, http.MethodPost, "/api/v1/sessions", nil, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("create without token: %d", w.Code)
	}
	if w := doJSON(r, http.MethodPost, "/api/v1/auth/token", map[string]string{"key": "nope"}, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong key: %d", w.Code)
	}

	w := doJSON(r, http.MethodPost, "/api/v1/auth/token", map[string]string{"key": "table-key"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("token: %d %s", w.Code, w.Body.String())
	}
	token := decode(t, w)["token"].(string)

	if w := doJSON(r, http.MethodPost, "/api/v1/sessions", nil, token); w.Code != http.StatusCreated {
		t.Errorf("create with token: %d %s", w.Code, w.Body.String())
	}
	if w := doJSON(r, http.MethodGet, "/api/v1/sessions", nil, ""); w.Code != http.StatusOK {
		t.Errorf("listing stays public: %d", w.Code)
	}
}
