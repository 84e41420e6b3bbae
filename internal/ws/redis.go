package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/playpool/billiards/internal/game"
	"github.com/redis/go-redis/v9"
)

var rdbClient *redis.Client

func SetRedisClient(r *redis.Client) {
	rdbClient = r
}

// StartSimEventSubscriber applies input events published by other instances to
// the sessions this instance runs.
func StartSimEventSubscriber(ctx context.Context) {
	if rdbClient == nil {
		log.Println("[WS] Redis client not set; sim event subscriber not started")
		return
	}

	pubsub := rdbClient.Subscribe(ctx, game.SimEventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", game.SimEventsChannel)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				handleSimEvent(game.Manager, SessionHub, msg.Payload)
			}
		}
	}()
}

// handleSimEvent applies one published event. It reports whether the event
// was for a session owned here.
func handleSimEvent(gm *game.GameManager, hub *Hub, payload string) bool {
	var ev game.SimEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		log.Printf("[WS] invalid sim event payload: %v", err)
		return false
	}

	events, ok := gm.ApplyRemoteEvent(ev)
	if !ok {
		return false
	}
	log.Printf("[WS] applied remote %s for session %s", ev.Type, ev.SessionID)

	if ev.Type == game.EventBoost {
		hub.BroadcastToSession(ev.SessionID, boostedMessage(ev.SessionID, "remote", events))
	}
	return true
}
