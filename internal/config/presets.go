package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/playpool/billiards/internal/physics"
	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var defaultPresetsYAML []byte

var ErrUnknownPreset = errors.New("unknown table preset")

// Presets maps a preset name to its initial ball set and table size.
type Presets map[string]physics.Params

// LoadPresets reads the embedded presets and overlays the file at path, if any.
// Every preset is validated so sessions can trust them later.
func LoadPresets(path string) (Presets, error) {
	presets := Presets{}
	if err := yaml.Unmarshal(defaultPresetsYAML, &presets); err != nil {
		return nil, fmt.Errorf("parsing embedded presets: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading presets file: %w", err)
		}
		overlay := Presets{}
		if err := yaml.Unmarshal(data, &overlay); err != nil {
			return nil, fmt.Errorf("parsing presets file %s: %w", path, err)
		}
		for name, p := range overlay {
			presets[name] = p
		}
	}

	for name, p := range presets {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
	}
	return presets, nil
}

// Get returns the named preset.
func (ps Presets) Get(name string) (physics.Params, error) {
	p, ok := ps[name]
	if !ok {
		return physics.Params{}, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	return p, nil
}

// Names returns preset names in sorted order.
func (ps Presets) Names() []string {
	names := make([]string, 0, len(ps))
	for name := range ps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Friction builds the physics friction factors from config.
func (c *Config) Friction() physics.Friction {
	return physics.Friction{Cushion: c.RollFriction, PerSecond: c.RollFriction}
}

// PhysicsOptions builds the step options from config.
func (c *Config) PhysicsOptions() physics.Options {
	return physics.Options{
		MaxFrameDelta:    c.MaxFrameDelta,
		ClampToBounds:    c.ClampToBounds,
		SeparateOverlaps: c.SeparateOverlaps,
	}
}
