package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playpool/billiards/internal/game"
)

// CreateSession starts a new simulated table
func CreateSession(c *gin.Context) {
	var req game.CreateOptions
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	s, err := game.Manager.CreateSession(req)
	if err != nil {
		log.Printf("[SIM] CreateSession failed: %v", err)
		respondError(c, err)
		return
	}

	c.Header("X-Session-ID", s.ID)
	c.JSON(http.StatusCreated, gin.H{
		"session": s.Summary(),
		"ws_url":  "/api/v1/sessions/" + s.ID + "/ws",
	})
}

// ListSessions returns the sessions running on this instance
func ListSessions(c *gin.Context) {
	sessions := game.Manager.ListSessions()
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

// SessionHistory returns finished and running sessions from the audit log
func SessionHistory(c *gin.Context) {
	limit := queryInt(c, "limit", 20, 1, 100)
	offset := queryInt(c, "offset", 0, 0, 1<<20)

	rows, err := game.Manager.SessionHistory(limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": rows, "limit": limit, "offset": offset})
}

// GetSession returns a session summary and its current frame
func GetSession(c *gin.Context) {
	s, err := game.Manager.GetSession(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session": s.Summary(),
		"frame":   s.Frame(),
	})
}

// GetSessionStats returns speed and energy statistics for a session
func GetSessionStats(c *gin.Context) {
	s, err := game.Manager.GetSession(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Stats())
}

// GetSessionBoosts returns the boosts recorded for a session
func GetSessionBoosts(c *gin.Context) {
	boosts, err := game.Manager.BoostHistory(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"boosts": boosts})
}

// BoostSession applies the speed boost to every ball of a session
func BoostSession(c *gin.Context) {
	id := c.Param("id")
	events, local, err := game.Manager.Boost(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !local {
		c.JSON(http.StatusAccepted, gin.H{"session_id": id, "forwarded": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": id, "events": events})
}

// StopSession stops a session and releases its table
func StopSession(c *gin.Context) {
	id := c.Param("id")
	local, err := game.Manager.StopSession(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !local {
		c.JSON(http.StatusAccepted, gin.H{"session_id": id, "forwarded": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": id, "status": game.StatusStopped})
}
