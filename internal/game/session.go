package game

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/playpool/billiards/internal/physics"
	"github.com/playpool/billiards/internal/telemetry"
)

var ErrSessionStopped = errors.New("session is stopped")

// FrameSink receives the frames a running session produces. The WebSocket hub
// implements it.
type FrameSink interface {
	BroadcastToSession(sessionID string, message interface{})
	ViewerCount(sessionID string) int
}

// FrameMessage is one rendered frame sent to viewers.
type FrameMessage struct {
	Type       string                 `json:"type"`
	SessionID  string                 `json:"session_id"`
	Frame      uint64                 `json:"frame"`
	SimSeconds float64                `json:"sim_seconds"`
	Skipped    bool                   `json:"skipped,omitempty"`
	Balls      []physics.BallSnapshot `json:"balls"`
	Events     []physics.Event        `json:"events,omitempty"`
}

// SessionSummary is the externally visible description of a session.
type SessionSummary struct {
	ID           string        `json:"id"`
	Preset       string        `json:"preset"`
	Seed         uint64        `json:"seed"`
	Status       SessionStatus `json:"status"`
	BallCount    int           `json:"ball_count"`
	Frame        uint64        `json:"frame"`
	SimSeconds   float64       `json:"sim_seconds"`
	Boosts       int           `json:"boosts"`
	CreatedAt    time.Time     `json:"created_at"`
	StartedAt    *time.Time    `json:"started_at,omitempty"`
	StoppedAt    *time.Time    `json:"stopped_at,omitempty"`
	LastActivity time.Time     `json:"last_activity"`
	AuditID      int           `json:"audit_id,omitempty"`
}

// Session owns one simulated table. The mutex serializes frame steps with
// boosts coming in from viewers or the API.
type Session struct {
	ID     string
	Preset string
	Seed   uint64

	Status       SessionStatus
	CreatedAt    time.Time
	StartedAt    *time.Time
	StoppedAt    *time.Time
	LastActivity time.Time
	AuditID      int // sim_sessions row id, 0 when not recorded

	world       *physics.World
	frameRate   int
	boostFactor float64
	boosts      int

	cancel context.CancelFunc
	done   chan struct{}
	mu     sync.RWMutex
}

// NewSession wraps a world. It does not start the frame loop.
func NewSession(id, preset string, seed uint64, world *physics.World, frameRate int, boostFactor float64) *Session {
	if frameRate <= 0 {
		frameRate = 60
	}
	if boostFactor <= 0 {
		boostFactor = physics.DefaultBoostFactor
	}
	now := time.Now()
	return &Session{
		ID:           id,
		Preset:       preset,
		Seed:         seed,
		Status:       StatusWaiting,
		CreatedAt:    now,
		LastActivity: now,
		world:        world,
		frameRate:    frameRate,
		boostFactor:  boostFactor,
	}
}

// nominalDelta is the frame period used for the boost sub-step.
func (s *Session) nominalDelta() float64 {
	return 1.0 / float64(s.frameRate)
}

// Advance steps the world by dt and returns the resulting frame.
func (s *Session) Advance(dt float64) FrameMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.world.Step(dt)
	return s.frameLocked(res.Skipped, res.Events)
}

// Boost applies the speed boost between frames.
func (s *Session) Boost() ([]physics.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Status == StatusStopped {
		return nil, ErrSessionStopped
	}
	events := s.world.Boost(s.boostFactor, s.nominalDelta())
	s.boosts++
	s.LastActivity = time.Now()
	return events, nil
}

// Frame returns the current state without stepping.
func (s *Session) Frame() FrameMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frameLocked(false, nil)
}

func (s *Session) frameLocked(skipped bool, events []physics.Event) FrameMessage {
	return FrameMessage{
		Type:       "frame",
		SessionID:  s.ID,
		Frame:      s.world.Frame(),
		SimSeconds: s.world.Elapsed(),
		Skipped:    skipped,
		Balls:      s.world.Snapshot(),
		Events:     events,
	}
}

// Stats summarizes ball motion.
func (s *Session) Stats() telemetry.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return telemetry.Collect(s.world)
}

// Touch marks the session as recently used.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastActivity = time.Now()
}

// IdleSince returns the last activity time.
func (s *Session) IdleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastActivity
}

// Summary snapshots session metadata.
func (s *Session) Summary() SessionSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionSummary{
		ID:           s.ID,
		Preset:       s.Preset,
		Seed:         s.Seed,
		Status:       s.Status,
		BallCount:    s.world.Balls().Len(),
		Frame:        s.world.Frame(),
		SimSeconds:   s.world.Elapsed(),
		Boosts:       s.boosts,
		CreatedAt:    s.CreatedAt,
		StartedAt:    s.StartedAt,
		StoppedAt:    s.StoppedAt,
		LastActivity: s.LastActivity,
		AuditID:      s.AuditID,
	}
}

// Start launches the frame loop. Each tick measures the wall-clock time since
// the previous one and hands it to the physics step as is.
func (s *Session) Start(ctx context.Context, sink FrameSink) {
	s.mu.Lock()
	if s.Status != StatusWaiting {
		s.mu.Unlock()
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	now := time.Now()
	s.StartedAt = &now
	s.Status = StatusRunning
	s.mu.Unlock()

	go s.run(ctx, sink)
}

func (s *Session) run(ctx context.Context, sink FrameSink) {
	defer close(s.done)

	ticker := time.NewTicker(time.Second / time.Duration(s.frameRate))
	defer ticker.Stop()

	last := time.Now()
	log.Printf("[SIM] Session %s running at %d fps", s.ID, s.frameRate)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[SIM] Session %s frame loop stopped", s.ID)
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now

			frame := s.Advance(dt)
			if frame.Skipped {
				log.Printf("[SIM] Session %s skipped a %.3fs frame", s.ID, dt)
			}
			if sink != nil {
				sink.BroadcastToSession(s.ID, frame)
			}
		}
	}
}

// Stop ends the frame loop and waits for it to exit. It is safe to call twice.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.Status == StatusStopped {
		s.mu.Unlock()
		return
	}
	s.Status = StatusStopped
	now := time.Now()
	s.StoppedAt = &now
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
