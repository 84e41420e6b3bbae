package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/playpool/billiards/internal/config"
)

func TestRunWritesOneRowPerSecond(t *testing.T) {
	presets, err := config.LoadPresets("")
	if err != nil {
		t.Fatalf("LoadPresets: %v", err)
	}
	cfg := &config.Config{
		FrameRate:     60,
		MaxFrameDelta: 0.15,
		RollFriction:  0.8,
		BoostFactor:   1.5,
		ClampToBounds: true,
	}

	var buf bytes.Buffer
	if err := run(cfg, presets, runOptions{Preset: "nine_ball", Seed: 3, Seconds: 3, BoostEvery: 2}, &buf); err != nil {
		t.Fatalf("run: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want header + 4 rows:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "frame,sim_seconds,balls") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "0,0,10,") {
		t.Errorf("first row should be the initial state, got %q", lines[1])
	}
}

func TestRunUnknownPreset(t *testing.T) {
	presets, _ := config.LoadPresets("")
	cfg := &config.Config{FrameRate: 60, MaxFrameDelta: 0.15}
	if err := run(cfg, presets, runOptions{Preset: "croquet", Seconds: 1}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown preset")
	}
}
