package game

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/playpool/billiards/internal/models"
)

// SimEventsChannel is the Redis channel instances use to forward input events
// to the instance that owns a session.
const SimEventsChannel = "sim_events"

// SimEvent types
const (
	EventBoost       = "boost"
	EventSessionStop = "session_stop"
)

// SimEvent is an input event forwarded between instances.
type SimEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

var ErrPersistenceDisabled = errors.New("no database configured")

// publishEvent forwards an input event over Redis.
func (gm *GameManager) publishEvent(ev SimEvent) error {
	if gm.rdb == nil {
		return nil
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	n, err := gm.rdb.Publish(context.Background(), SimEventsChannel, b).Result()
	if err != nil {
		log.Printf("[REDIS] publish %s for %s failed: %v", ev.Type, ev.SessionID, err)
		return err
	}
	log.Printf("[REDIS] published %s for %s (subscribers=%d)", ev.Type, ev.SessionID, n)
	return nil
}

// saveSummaryToRedis caches the session summary for dashboards. Ball state is
// never written.
func (gm *GameManager) saveSummaryToRedis(s *Session) {
	if gm.rdb == nil {
		return
	}
	data, err := json.Marshal(s.Summary())
	if err != nil {
		log.Printf("[REDIS] Failed to marshal summary for %s: %v", s.ID, err)
		return
	}
	key := "sim:" + s.ID + ":summary"
	if err := gm.rdb.SetEx(context.Background(), key, data, time.Hour).Err(); err != nil {
		log.Printf("[REDIS] Failed to save summary for %s: %v", s.ID, err)
	}
}

// recordSessionCreated inserts the audit row for a new session.
func (gm *GameManager) recordSessionCreated(s *Session) {
	if gm == nil || gm.db == nil {
		return
	}
	sum := s.Summary()

	var id int
	err := gm.db.QueryRowx(
		`INSERT INTO sim_sessions (session_id, preset, ball_count, seed, status, created_at, started_at) VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		sum.ID, sum.Preset, sum.BallCount, int64(sum.Seed), string(sum.Status), sum.CreatedAt, sum.StartedAt,
	).Scan(&id)
	if err != nil {
		log.Printf("[DB] Failed to record session %s: %v", s.ID, err)
		return
	}

	s.mu.Lock()
	s.AuditID = id
	s.mu.Unlock()
}

// recordSessionStopped closes the audit row with the final counters.
func (gm *GameManager) recordSessionStopped(s *Session) {
	if gm == nil || gm.db == nil {
		return
	}
	sum := s.Summary()
	if sum.AuditID == 0 {
		log.Printf("[DB] Session %s has no audit row; stop not recorded", s.ID)
		return
	}
	_, err := gm.db.Exec(
		`UPDATE sim_sessions SET status=$1, frames=$2, boosts=$3, stopped_at=$4 WHERE id=$5`,
		string(sum.Status), int64(sum.Frame), sum.Boosts, sum.StoppedAt, sum.AuditID,
	)
	if err != nil {
		log.Printf("[DB] Failed to close session %s: %v", s.ID, err)
	}
}

// recordBoost logs a speed boost against the session.
func (gm *GameManager) recordBoost(s *Session) {
	if gm == nil || gm.db == nil {
		return
	}
	sum := s.Summary()
	if sum.AuditID == 0 {
		return
	}
	_, err := gm.db.Exec(
		`INSERT INTO sim_boosts (session_id, factor, frame, created_at) VALUES ($1,$2,$3,NOW())`,
		sum.ID, s.boostFactor, int64(sum.Frame),
	)
	if err != nil {
		log.Printf("[DB] Failed to record boost for %s: %v", s.ID, err)
	}
}

// SessionHistory returns the most recent sessions from the audit log.
func (gm *GameManager) SessionHistory(limit, offset int) ([]models.SimSession, error) {
	if gm.db == nil {
		return nil, ErrPersistenceDisabled
	}
	var rows []models.SimSession
	err := gm.db.Select(&rows, `
		SELECT id, session_id, preset, ball_count, seed, status, frames, boosts, created_at, started_at, stopped_at
		FROM sim_sessions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return rows, err
}

// BoostHistory returns the boosts recorded for a session, oldest first.
func (gm *GameManager) BoostHistory(sessionID string) ([]models.SimBoost, error) {
	if gm.db == nil {
		return nil, ErrPersistenceDisabled
	}
	var rows []models.SimBoost
	err := gm.db.Select(&rows, `
		SELECT id, session_id, factor, frame, created_at
		FROM sim_boosts
		WHERE session_id = $1
		ORDER BY created_at ASC
	`, sessionID)
	return rows, err
}
