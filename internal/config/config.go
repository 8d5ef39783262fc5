package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config carries the runtime tuning knobs for one interpreter instance.
// Zero fields mean "use the default".
type Config struct {
	// StubSegment is the number of stubs per pool segment.
	StubSegment int `yaml:"stub_segment"`

	// GCTrigger is the number of stub allocations between collection
	// attempts.
	GCTrigger int `yaml:"gc_trigger"`

	// MaxLevels caps the evaluator's level stack depth.
	MaxLevels int `yaml:"max_levels"`

	// DisableGC turns the collector off entirely (debugging aid).
	DisableGC bool `yaml:"disable_gc"`
}

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		StubSegment: DefaultStubSegment,
		GCTrigger:   DefaultGCTrigger,
		MaxLevels:   DefaultMaxLevels,
	}
}

// Load returns the default config overlaid with .revo.yml from dir, if
// one exists. A missing file is not an error; a malformed one is.
func Load(dir string) (*Config, error) {
	cfg := Default()
	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	overlay := Config{}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if overlay.StubSegment > 0 {
		cfg.StubSegment = overlay.StubSegment
	}
	if overlay.GCTrigger > 0 {
		cfg.GCTrigger = overlay.GCTrigger
	}
	if overlay.MaxLevels > 0 {
		cfg.MaxLevels = overlay.MaxLevels
	}
	cfg.DisableGC = overlay.DisableGC
	return cfg, nil
}
