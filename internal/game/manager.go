package game

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	mrand "math/rand/v2"
	"sort"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/playpool/billiards/internal/config"
	"github.com/playpool/billiards/internal/physics"
	"github.com/redis/go-redis/v9"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many running sessions")
)

// GameManager manages all simulation sessions running on this instance
type GameManager struct {
	sessions map[string]*Session // keyed by session ID
	presets  config.Presets
	sink     FrameSink
	rdb      *redis.Client  // Redis client for events and summaries
	db       *sqlx.DB       // SQL DB for the session audit log
	config   *config.Config // Application config
	ctx      context.Context
	mu       sync.RWMutex
}

// CreateOptions selects the table for a new session.
type CreateOptions struct {
	Preset string  `json:"preset"`
	Seed   *uint64 `json:"seed,omitempty"`
}

var (
	// Global session manager instance
	Manager *GameManager
)

// InitializeManager initializes the global session manager
func InitializeManager(ctx context.Context, db *sqlx.DB, rdb *redis.Client, cfg *config.Config, presets config.Presets) {
	Manager = NewGameManager(ctx, db, rdb, cfg, presets)
}

// NewGameManager creates a new session manager. db and rdb may be nil.
func NewGameManager(ctx context.Context, db *sqlx.DB, rdb *redis.Client, cfg *config.Config, presets config.Presets) *GameManager {
	return &GameManager{
		sessions: make(map[string]*Session),
		presets:  presets,
		rdb:      rdb,
		db:       db,
		config:   cfg,
		ctx:      ctx,
	}
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// generateSessionID generates a unique session ID
func generateSessionID() string {
	return "sim_" + generateToken(8)
}

func randomSeed() uint64 {
	var b [8]byte
	rand.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

// SetSink sets where running sessions send their frames.
func (gm *GameManager) SetSink(sink FrameSink) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.sink = sink
}

// GetConfig returns the application config.
func (gm *GameManager) GetConfig() *config.Config {
	return gm.config
}

// Presets returns the table presets sessions can be created from.
func (gm *GameManager) Presets() config.Presets {
	return gm.presets
}

// CreateSession builds a world from a preset and starts its frame loop.
func (gm *GameManager) CreateSession(opts CreateOptions) (*Session, error) {
	name := opts.Preset
	if name == "" {
		name = gm.config.DefaultPreset
	}
	params, err := gm.presets.Get(name)
	if err != nil {
		return nil, err
	}

	seed := randomSeed()
	if opts.Seed != nil {
		seed = *opts.Seed
	}

	if gm.atCapacity() {
		return nil, ErrTooManySessions
	}

	world, err := physics.NewWorld(params, mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		gm.config.Friction(), gm.config.PhysicsOptions())
	if err != nil {
		return nil, fmt.Errorf("creating %s table: %w", name, err)
	}
	s := NewSession(generateSessionID(), name, seed, world, gm.config.FrameRate, gm.config.BoostFactor)

	// Placement can take a while; only the capacity check and insert hold the lock.
	gm.mu.Lock()
	if gm.atCapacityLocked() {
		gm.mu.Unlock()
		return nil, ErrTooManySessions
	}
	gm.sessions[s.ID] = s
	sink := gm.sink
	gm.mu.Unlock()

	s.Start(gm.ctx, sink)
	log.Printf("[SIM] Session %s created (preset=%s balls=%d seed=%d)", s.ID, name, params.BallCount, seed)

	gm.recordSessionCreated(s)
	gm.saveSummaryToRedis(s)
	return s, nil
}

func (gm *GameManager) atCapacity() bool {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return gm.atCapacityLocked()
}

func (gm *GameManager) atCapacityLocked() bool {
	return gm.config.MaxSessions > 0 && len(gm.sessions) >= gm.config.MaxSessions
}

// GetSession returns the session with the given ID.
func (gm *GameManager) GetSession(id string) (*Session, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	s, ok := gm.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// ListSessions returns summaries of every local session, newest first.
func (gm *GameManager) ListSessions() []SessionSummary {
	gm.mu.RLock()
	out := make([]SessionSummary, 0, len(gm.sessions))
	for _, s := range gm.sessions {
		out = append(out, s.Summary())
	}
	gm.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// StopSession stops a local session, or asks the owning instance to.
func (gm *GameManager) StopSession(id string) (local bool, err error) {
	gm.mu.Lock()
	s, ok := gm.sessions[id]
	if ok {
		delete(gm.sessions, id)
	}
	sink := gm.sink
	gm.mu.Unlock()

	if !ok {
		if gm.rdb == nil {
			return false, ErrSessionNotFound
		}
		return false, gm.publishEvent(SimEvent{Type: EventSessionStop, SessionID: id})
	}

	s.Stop()
	log.Printf("[SIM] Session %s stopped", id)

	gm.recordSessionStopped(s)
	gm.saveSummaryToRedis(s)
	if sink != nil {
		sink.BroadcastToSession(id, map[string]interface{}{
			"type":       "session_stopped",
			"session_id": id,
		})
	}
	return true, nil
}

// Boost applies a speed boost to a local session, or publishes it for the
// instance that owns the session.
func (gm *GameManager) Boost(id string) (events []physics.Event, local bool, err error) {
	s, err := gm.GetSession(id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) && gm.rdb != nil {
			return nil, false, gm.publishEvent(SimEvent{Type: EventBoost, SessionID: id})
		}
		return nil, false, err
	}

	events, err = s.Boost()
	if err != nil {
		return nil, true, err
	}
	log.Printf("[SIM] Session %s boosted x%.2f", id, s.boostFactor)
	gm.recordBoost(s)
	return events, true, nil
}

// ApplyRemoteEvent handles an event published by another instance. Events for
// sessions this instance does not own are ignored.
func (gm *GameManager) ApplyRemoteEvent(ev SimEvent) ([]physics.Event, bool) {
	if _, err := gm.GetSession(ev.SessionID); err != nil {
		return nil, false
	}
	switch ev.Type {
	case EventBoost:
		events, _, err := gm.Boost(ev.SessionID)
		if err != nil {
			log.Printf("[SIM] Remote boost for %s failed: %v", ev.SessionID, err)
			return nil, false
		}
		return events, true
	case EventSessionStop:
		if _, err := gm.StopSession(ev.SessionID); err != nil {
			log.Printf("[SIM] Remote stop for %s failed: %v", ev.SessionID, err)
			return nil, false
		}
		return nil, true
	default:
		log.Printf("[SIM] Unknown remote event type: %s", ev.Type)
		return nil, false
	}
}

// StopAll stops every local session, e.g. on shutdown.
func (gm *GameManager) StopAll() {
	gm.mu.RLock()
	ids := make([]string, 0, len(gm.sessions))
	for id := range gm.sessions {
		ids = append(ids, id)
	}
	gm.mu.RUnlock()

	for _, id := range ids {
		gm.StopSession(id)
	}
}
