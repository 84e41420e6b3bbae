package models

import (
	"database/sql"
	"time"
)

// SimSession is the audit record of one simulation session. It holds counters
// and lifecycle times only, never ball state.
type SimSession struct {
	ID        int          `db:"id" json:"id"`
	SessionID string       `db:"session_id" json:"session_id"`
	Preset    string       `db:"preset" json:"preset"`
	BallCount int          `db:"ball_count" json:"ball_count"`
	Seed      int64        `db:"seed" json:"seed"`
	Status    string       `db:"status" json:"status"`
	Frames    int64        `db:"frames" json:"frames"`
	Boosts    int          `db:"boosts" json:"boosts"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	StartedAt sql.NullTime `db:"started_at" json:"started_at,omitempty"`
	StoppedAt sql.NullTime `db:"stopped_at" json:"stopped_at,omitempty"`
}

// SimBoost records one speed boost applied to a session
type SimBoost struct {
	ID        int       `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"session_id"`
	Factor    float64   `db:"factor" json:"factor"`
	Frame     int64     `db:"frame" json:"frame"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
