package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/playpool/billiards/internal/config"
	"github.com/playpool/billiards/internal/game"
	"github.com/playpool/billiards/internal/physics"
)

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrSessionStopped):
		return http.StatusConflict
	case errors.Is(err, game.ErrTooManySessions):
		return http.StatusServiceUnavailable
	case errors.Is(err, config.ErrUnknownPreset), errors.Is(err, physics.ErrInvalidParams):
		return http.StatusBadRequest
	case errors.Is(err, physics.ErrPlacementFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, game.ErrPersistenceDisabled):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(errorStatus(err), gin.H{"error": err.Error()})
}

// queryInt reads a bounded integer query parameter
func queryInt(c *gin.Context, key string, def, min, max int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
