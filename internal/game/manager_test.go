package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/playpool/billiards/internal/config"
	"github.com/playpool/billiards/internal/physics"
)

func newTestManager(t *testing.T) (*GameManager, *fakeSink) {
	t.Helper()
	presets, err := config.LoadPresets("")
	if err != nil {
		t.Fatalf("LoadPresets: %v", err)
	}
	cfg := &config.Config{
		FrameRate:          120,
		MaxFrameDelta:      0.15,
		RollFriction:       0.8,
		BoostFactor:        1.5,
		ClampToBounds:      true,
		DefaultPreset:      "eight_ball",
		MaxSessions:        2,
		SessionIdleMinutes: 1,
		ReaperPollSeconds:  1,
	}
	gm := NewGameManager(context.Background(), nil, nil, cfg, presets)
	sink := newFakeSink()
	gm.SetSink(sink)
	t.Cleanup(gm.StopAll)
	return gm, sink
}

func TestCreateSessionDefaults(t *testing.T) {
	gm, _ := newTestManager(t)

	seed := uint64(99)
	s, err := gm.CreateSession(CreateOptions{Seed: &seed})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	sum := s.Summary()
	if sum.Preset != "eight_ball" || sum.BallCount != 16 || sum.Seed != 99 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if sum.Status != StatusRunning {
		t.Errorf("status = %s, want RUNNING", sum.Status)
	}

	got, err := gm.GetSession(s.ID)
	if err != nil || got != s {
		t.Errorf("GetSession(%s) = %v, %v", s.ID, got, err)
	}
	if len(gm.ListSessions()) != 1 {
		t.Errorf("ListSessions returned %d sessions", len(gm.ListSessions()))
	}
}

func TestCreateSessionErrors(t *testing.T) {
	gm, _ := newTestManager(t)

	if _, err := gm.CreateSession(CreateOptions{Preset: "croquet"}); !errors.Is(err, config.ErrUnknownPreset) {
		t.Errorf("unknown preset: got %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := gm.CreateSession(CreateOptions{Preset: "nine_ball"}); err != nil {
			t.Fatalf("CreateSession %d: %v", i, err)
		}
	}
	if _, err := gm.CreateSession(CreateOptions{}); !errors.Is(err, ErrTooManySessions) {
		t.Errorf("expected ErrTooManySessions, got %v", err)
	}
}

func TestStopSession(t *testing.T) {
	gm, sink := newTestManager(t)
	s, err := gm.CreateSession(CreateOptions{})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	local, err := gm.StopSession(s.ID)
	if err != nil || !local {
		t.Fatalf("StopSession = %v, %v", local, err)
	}
	if _, err := gm.GetSession(s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("stopped session still registered: %v", err)
	}
	if s.Summary().Status != StatusStopped {
		t.Errorf("status = %s, want STOPPED", s.Summary().Status)
	}
	if sink.count(s.ID) == 0 {
		t.Error("no session_stopped broadcast")
	}

	if _, err := gm.StopSession("sim_missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("stopping unknown session without redis: got %v", err)
	}
}

func TestBoostSession(t *testing.T) {
	gm, _ := newTestManager(t)
	s, err := gm.CreateSession(CreateOptions{Preset: "nine_ball"})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	events, local, err := gm.Boost(s.ID)
	if err != nil || !local {
		t.Fatalf("Boost = %v, %v", local, err)
	}
	if len(events) != 10 {
		t.Errorf("got %d boost events, want 10", len(events))
	}

	if _, _, err := gm.Boost("sim_missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("boosting unknown session: got %v", err)
	}
}

func TestApplyRemoteEvent(t *testing.T) {
	gm, _ := newTestManager(t)
	s, err := gm.CreateSession(CreateOptions{})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if _, ok := gm.ApplyRemoteEvent(SimEvent{Type: EventBoost, SessionID: "sim_elsewhere"}); ok {
		t.Error("event for a session owned elsewhere should be ignored")
	}
	if _, ok := gm.ApplyRemoteEvent(SimEvent{Type: EventBoost, SessionID: s.ID}); !ok {
		t.Error("remote boost for a local session was not applied")
	}
	if s.Summary().Boosts != 1 {
		t.Errorf("boosts = %d, want 1", s.Summary().Boosts)
	}
	if _, ok := gm.ApplyRemoteEvent(SimEvent{Type: EventSessionStop, SessionID: s.ID}); !ok {
		t.Error("remote stop was not applied")
	}
	if s.Summary().Status != StatusStopped {
		t.Errorf("status = %s, want STOPPED", s.Summary().Status)
	}
}

func TestReapIdle(t *testing.T) {
	gm, sink := newTestManager(t)
	watched, err := gm.CreateSession(CreateOptions{})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	idle, err := gm.CreateSession(CreateOptions{})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	sink.mu.Lock()
	sink.viewers[watched.ID] = 1
	sink.mu.Unlock()

	stopped := gm.reapIdle(time.Now().Add(2 * time.Minute))
	if len(stopped) != 1 || stopped[0] != idle.ID {
		t.Errorf("reaped %v, want only %s", stopped, idle.ID)
	}
	if _, err := gm.GetSession(watched.ID); err != nil {
		t.Errorf("watched session was reaped: %v", err)
	}

	if got := gm.reapIdle(time.Now()); len(got) != 0 {
		t.Errorf("fresh sessions reaped: %v", got)
	}
}

func TestSessionHistoryWithoutDB(t *testing.T) {
	gm, _ := newTestManager(t)
	if _, err := gm.SessionHistory(10, 0); !errors.Is(err, ErrPersistenceDisabled) {
		t.Errorf("expected ErrPersistenceDisabled, got %v", err)
	}
}

func TestConcurrentCreateRespectsCapacity(t *testing.T) {
	gm, _ := newTestManager(t)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		full    int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := gm.CreateSession(CreateOptions{Preset: "nine_ball"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, ErrTooManySessions):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if created != 2 || full != 6 {
		t.Errorf("created=%d rejected=%d, want 2 and 6", created, full)
	}
	if n := len(gm.ListSessions()); n != 2 {
		t.Errorf("%d sessions registered, want 2", n)
	}
}

func TestCreateSessionPlacementFailure(t *testing.T) {
	gm, _ := newTestManager(t)
	gm.presets["jammed"] = physics.Params{
		BallCount:       50,
		Radius:          0.1,
		Mass:            0.17,
		TableHalfWidth:  0.3,
		TableHalfHeight: 0.3,
		VelocityRange:   1,
	}

	if _, err := gm.CreateSession(CreateOptions{Preset: "jammed"}); !errors.Is(err, physics.ErrPlacementFailed) {
		t.Fatalf("expected ErrPlacementFailed, got %v", err)
	}
	if n := len(gm.ListSessions()); n != 0 {
		t.Errorf("failed table left %d sessions registered", n)
	}
	if _, err := gm.CreateSession(CreateOptions{}); err != nil {
		t.Errorf("manager unusable after a failed placement: %v", err)
	}
}

func TestAuditIDInSummary(t *testing.T) {
	gm, _ := newTestManager(t)
	s, err := gm.CreateSession(CreateOptions{})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if id := s.Summary().AuditID; id != 0 {
		t.Errorf("AuditID = %d without a database, want 0", id)
	}

	s.mu.Lock()
	s.AuditID = 42
	s.mu.Unlock()
	if id := s.Summary().AuditID; id != 42 {
		t.Errorf("Summary().AuditID = %d, want 42", id)
	}

	// Without a database the audit hooks are no-ops.
	gm.recordBoost(s)
	gm.recordSessionStopped(s)
}
