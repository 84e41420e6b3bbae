package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database (empty disables the session audit log)
	DatabaseURL string

	// Redis (empty disables cross-instance events)
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Security
	JWTSecret       string
	OperatorKeyHash string
	TokenTTLMinutes int

	// Simulation
	FrameRate        int
	MaxFrameDelta    float64
	RollFriction     float64
	BoostFactor      float64
	ClampToBounds    bool
	SeparateOverlaps bool
	DefaultPreset    string
	PresetsFile      string

	// Sessions
	MaxSessions        int
	SessionIdleMinutes int
	ReaperPollSeconds  int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", ""),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Security
		JWTSecret:       getEnv("JWT_SECRET", "change-me-in-production"),
		OperatorKeyHash: getEnv("OPERATOR_KEY_HASH", ""),
		TokenTTLMinutes: getEnvInt("TOKEN_TTL_MINUTES", 720),

		// Simulation
		FrameRate:        getEnvInt("FRAME_RATE", 60),
		MaxFrameDelta:    getEnvFloat("MAX_FRAME_DELTA", 0.15),
		RollFriction:     getEnvFloat("ROLL_FRICTION", 0.8),
		BoostFactor:      getEnvFloat("BOOST_FACTOR", 1.5),
		ClampToBounds:    getEnvBool("CLAMP_TO_BOUNDS", true),
		SeparateOverlaps: getEnvBool("SEPARATE_OVERLAPS", false),
		DefaultPreset:    getEnv("DEFAULT_PRESET", "eight_ball"),
		PresetsFile:      getEnv("PRESETS_FILE", ""),

		// Sessions
		MaxSessions:        getEnvInt("MAX_SESSIONS", 32),
		SessionIdleMinutes: getEnvInt("SESSION_IDLE_MINUTES", 10),
		ReaperPollSeconds:  getEnvInt("REAPER_POLL_SECONDS", 30),
	}
}

// MaxFrameRate bounds FRAME_RATE so the frame ticker period stays well above zero.
const MaxFrameRate = 1000

var ErrInvalidConfig = errors.New("invalid configuration")

// Validate rejects simulation settings the physics step cannot honor.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidConfig}, args...)...))
	}

	if c.FrameRate < 1 || c.FrameRate > MaxFrameRate {
		add("FRAME_RATE must be between 1 and %d, got %d", MaxFrameRate, c.FrameRate)
	}
	if c.MaxFrameDelta <= 0 {
		add("MAX_FRAME_DELTA must be positive, got %g", c.MaxFrameDelta)
	} else if c.FrameRate >= 1 && 1/float64(c.FrameRate) > c.MaxFrameDelta {
		add("frame period 1/%d exceeds MAX_FRAME_DELTA %g, every frame would be skipped", c.FrameRate, c.MaxFrameDelta)
	}
	if c.RollFriction <= 0 || c.RollFriction >= 1 {
		add("ROLL_FRICTION must be in (0, 1), got %g", c.RollFriction)
	}
	if c.BoostFactor <= 0 {
		add("BOOST_FACTOR must be positive, got %g", c.BoostFactor)
	}
	if c.MaxSessions < 0 {
		add("MAX_SESSIONS must not be negative, got %d", c.MaxSessions)
	}
	if c.SessionIdleMinutes < 0 || c.ReaperPollSeconds < 0 {
		add("SESSION_IDLE_MINUTES and REAPER_POLL_SECONDS must not be negative")
	}
	if c.TokenTTLMinutes <= 0 {
		add("TOKEN_TTL_MINUTES must be positive, got %d", c.TokenTTLMinutes)
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
