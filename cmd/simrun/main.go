package main

import (
	"fmt"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/playpool/billiards/internal/config"
	"github.com/playpool/billiards/internal/physics"
	"github.com/playpool/billiards/internal/telemetry"
)

// runOptions controls a headless run.
type runOptions struct {
	Preset     string
	Seed       uint64
	Seconds    int
	BoostEvery int // seconds between boosts, 0 disables
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	presets, err := config.LoadPresets(cfg.PresetsFile)
	if err != nil {
		log.Fatalf("Failed to load table presets: %v", err)
	}

	opts := runOptions{
		Preset:     getEnv("SIM_PRESET", cfg.DefaultPreset),
		Seed:       uint64(getEnvInt("SIM_SEED", 1)),
		Seconds:    getEnvInt("SIM_SECONDS", 30),
		BoostEvery: getEnvInt("SIM_BOOST_EVERY", 0),
	}

	var out io.Writer = os.Stdout
	if path := os.Getenv("SIM_CSV"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", path, err)
		}
		defer f.Close()
		out = f
	}

	if err := run(cfg, presets, opts, out); err != nil {
		log.Fatalf("simrun: %v", err)
	}
}

// run steps a world at the configured frame rate and writes one telemetry
// row per simulated second.
func run(cfg *config.Config, presets config.Presets, opts runOptions, out io.Writer) error {
	params, err := presets.Get(opts.Preset)
	if err != nil {
		return err
	}
	if cfg.FrameRate <= 0 {
		return fmt.Errorf("frame rate must be positive, got %d", cfg.FrameRate)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	w, err := physics.NewWorld(params, rng, cfg.Friction(), cfg.PhysicsOptions())
	if err != nil {
		return err
	}

	dt := 1.0 / float64(cfg.FrameRate)
	csv := telemetry.NewCSVWriter(out)
	rows := []telemetry.Stats{telemetry.Collect(w)}
	second := 0

	log.Printf("[SIM] %s: %d balls, %ds at %d fps, seed %d", opts.Preset, params.BallCount, opts.Seconds, cfg.FrameRate, opts.Seed)
	for second < opts.Seconds {
		w.Step(dt)
		s := int(math.Floor(w.Elapsed() + 1e-9))
		if s == second {
			continue
		}
		second = s
		if opts.BoostEvery > 0 && second%opts.BoostEvery == 0 {
			w.Boost(cfg.BoostFactor, dt)
		}
		rows = append(rows, telemetry.Collect(w))
	}

	return csv.Write(rows)
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
