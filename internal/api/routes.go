package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/playpool/billiards/internal/api/handlers"
	"github.com/playpool/billiards/internal/config"
	"github.com/playpool/billiards/internal/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, cfg *config.Config, presets config.Presets) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)
		v1.GET("/config", handlers.GetConfig(cfg))
		v1.GET("/presets", handlers.ListPresets(presets))
		v1.POST("/auth/token", handlers.IssueToken(cfg))

		sessions := v1.Group("/sessions")
		{
			sessions.GET("", handlers.ListSessions)
			sessions.GET("/:id", handlers.GetSession)
			sessions.GET("/:id/stats", handlers.GetSessionStats)
			sessions.GET("/:id/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleSessionWebSocket())

			control := sessions.Group("", handlers.AuthMiddleware(cfg))
			{
				control.POST("", handlers.CreateSession)
				control.GET("/history", handlers.SessionHistory)
				control.GET("/:id/boosts", handlers.GetSessionBoosts)
				control.POST("/:id/boost", handlers.BoostSession)
				control.DELETE("/:id", handlers.StopSession)
			}
		}
	}
}
