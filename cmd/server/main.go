package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"

	"github.com/playpool/billiards/internal/api"
	"github.com/playpool/billiards/internal/config"
	"github.com/playpool/billiards/internal/database"
	"github.com/playpool/billiards/internal/game"
	"github.com/playpool/billiards/internal/migrations"
	"github.com/playpool/billiards/internal/redis"
	"github.com/playpool/billiards/internal/ws"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	presets, err := config.LoadPresets(cfg.PresetsFile)
	if err != nil {
		log.Fatalf("Failed to load table presets: %v", err)
	}
	if _, err := presets.Get(cfg.DefaultPreset); err != nil {
		log.Fatalf("DEFAULT_PRESET: %v", err)
	}
	log.Printf("[SIM] Presets loaded: %v", presets.Names())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Session audit log (optional)
	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		if os.Getenv("MIGRATE_ON_START") == "true" {
			log.Println("[MIGRATE] Running DB migrations on startup...")
			if err := migrations.RunMigrations(cfg.DatabaseURL, migrations.DefaultDir); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}
		db, err = database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Println("[DB] Session audit log enabled")
	} else {
		log.Println("[DB] DATABASE_URL not set; session audit log disabled")
	}

	// Cross-instance events (optional)
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		rdb, err = redis.Connect(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		log.Println("[REDIS] Connected")
	} else {
		log.Println("[REDIS] REDIS_URL not set; running standalone")
	}

	game.InitializeManager(ctx, db, rdb, cfg, presets)
	game.Manager.SetSink(ws.SessionHub)
	game.Manager.StartReaper(ctx)

	ws.SetRedisClient(rdb)
	ws.StartSimEventSubscriber(ctx)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, cfg, presets)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting billiards simulation server on port %s (%d fps)", cfg.Port, cfg.FrameRate)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	game.Manager.StopAll()
}
