package middleware

import (
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/playpool/billiards/internal/config"
)

var devOrigins = []string{
	"http://localhost:5173", // Vite dev server
	"http://127.0.0.1:5173",
}

// AllowedOrigins lists the browser origins allowed to reach the API.
func AllowedOrigins(cfg *config.Config) []string {
	if cfg.Environment == "development" {
		origins := append([]string{}, devOrigins...)
		if cfg.FrontendURL != "" && !contains(origins, cfg.FrontendURL) {
			origins = append(origins, cfg.FrontendURL)
		}
		return origins
	}
	if cfg.FrontendURL == "" {
		return nil
	}
	var origins []string
	for _, o := range strings.Split(cfg.FrontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// CORSMiddleware returns a CORS middleware configured for the environment
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	origins := AllowedOrigins(cfg)
	log.Printf("[CORS] Environment: %s, allowed origins: %v", cfg.Environment, origins)

	corsConfig := cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{
			"GET", "POST", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Length", "Content-Type", "Authorization",
			"Accept", "Cache-Control", "X-Requested-With",
		},
		ExposeHeaders: []string{
			"Content-Length", "X-Session-ID",
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		// Nothing configured outside development: same-origin only.
		corsConfig.AllowOriginFunc = func(string) bool { return false }
	}

	return cors.New(corsConfig)
}

// WebSocketCORSCheck validates WebSocket upgrade origins
func WebSocketCORSCheck(cfg *config.Config) gin.HandlerFunc {
	origins := AllowedOrigins(cfg)

	return func(c *gin.Context) {
		if !strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		if origin == "" {
			// Non-browser renderers do not send an Origin.
			c.Next()
			return
		}

		allowed := contains(origins, origin)
		if !allowed && cfg.Environment == "development" {
			allowed = strings.HasPrefix(origin, "http://localhost:") ||
				strings.HasPrefix(origin, "http://127.0.0.1:")
		}

		if !allowed {
			c.JSON(403, gin.H{"error": "WebSocket origin not allowed"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
