package game

import (
	"context"
	"log"
	"time"
)

// StartReaper stops sessions nobody has watched or touched for
// SessionIdleMinutes.
func (gm *GameManager) StartReaper(ctx context.Context) {
	if gm.config == nil || gm.config.SessionIdleMinutes <= 0 {
		log.Println("[REAPER] Idle timeout disabled; reaper not started")
		return
	}
	poll := time.Duration(gm.config.ReaperPollSeconds) * time.Second
	if poll <= 0 {
		poll = 30 * time.Second
	}

	log.Println("[REAPER] Reaper started")
	go func() {
		ticker := time.NewTicker(poll)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[REAPER] Reaper stopping")
				return
			case <-ticker.C:
				gm.reapIdle(time.Now())
			}
		}
	}()
}

// reapIdle stops every session with no viewers whose last activity is older
// than the idle timeout. It returns the stopped IDs.
func (gm *GameManager) reapIdle(now time.Time) []string {
	idle := time.Duration(gm.config.SessionIdleMinutes) * time.Minute

	gm.mu.RLock()
	sink := gm.sink
	candidates := make([]*Session, 0)
	for _, s := range gm.sessions {
		candidates = append(candidates, s)
	}
	gm.mu.RUnlock()

	stopped := make([]string, 0)
	for _, s := range candidates {
		if sink != nil && sink.ViewerCount(s.ID) > 0 {
			continue
		}
		if now.Sub(s.IdleSince()) < idle {
			continue
		}
		log.Printf("[REAPER] Stopping idle session %s (last activity %s)", s.ID, s.IdleSince().Format(time.RFC3339))
		if _, err := gm.StopSession(s.ID); err != nil {
			log.Printf("[REAPER] Failed to stop %s: %v", s.ID, err)
			continue
		}
		stopped = append(stopped, s.ID)
	}
	return stopped
}
