package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playpool/billiards/internal/config"
)

// GetConfig returns the simulation settings renderers need
func GetConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"frame_rate":      cfg.FrameRate,
			"max_frame_delta": cfg.MaxFrameDelta,
			"roll_friction":   cfg.RollFriction,
			"boost_factor":    cfg.BoostFactor,
			"default_preset":  cfg.DefaultPreset,
			"auth_required":   cfg.OperatorKeyHash != "",
		})
	}
}

// ListPresets returns the table presets sessions can be created from
func ListPresets(presets config.Presets) gin.HandlerFunc {
	return func(c *gin.Context) {
		out := make([]gin.H, 0, len(presets))
		for _, name := range presets.Names() {
			p := presets[name]
			out = append(out, gin.H{"name": name, "params": p})
		}
		c.JSON(http.StatusOK, gin.H{"presets": out})
	}
}
