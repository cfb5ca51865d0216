// Package config loads the service configuration from a TOML file, applying
// clinical defaults for anything unset.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/rehabmetrics/handrom/internal/assessment"
	"github.com/rehabmetrics/handrom/internal/kapandji"
	"github.com/rehabmetrics/handrom/internal/rom"
)

//go:embed sample_config.toml
var sampleConfig string

// Server contains the HTTP bind configuration.
type Server struct {
	Bind      string `toml:"bind"`
	StaticDir string `toml:"static_dir"`
}

// Storage contains the SQLite database location.
type Storage struct {
	DBPath string `toml:"db_path"`
}

// ROM contains overrides for the ROM calculator thresholds. Zero values fall
// back to the clinical defaults.
type ROM struct {
	MinTrackingConf      float64 `toml:"min_tracking_confidence"`
	MinVisibility        float64 `toml:"min_visibility"`
	MinAvgVisibility     float64 `toml:"min_avg_visibility"`
	VisibleFrameFraction float64 `toml:"visible_frame_fraction"`
	MaxFrameDelta        float64 `toml:"max_frame_delta"`
	ConsistencyWindow    int     `toml:"consistency_window"`
	SmoothingWindow      int     `toml:"smoothing_window"`
	MinValidFrames       int     `toml:"min_valid_frames"`
}

// Kapandji selects the opposition scoring variant.
type Kapandji struct {
	Profile        string  `toml:"profile"`
	ReachThreshold float64 `toml:"reach_threshold"`
}

// Config is the full service configuration.
type Config struct {
	Server   Server   `toml:"server"`
	Storage  Storage  `toml:"storage"`
	ROM      ROM      `toml:"rom"`
	Kapandji Kapandji `toml:"kapandji"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		Server:  Server{Bind: ":8080"},
		Storage: Storage{DBPath: filepath.Join(home, ".handrom", "handrom.db")},
	}
}

// Load reads the configuration from path. An empty path tries the default
// location and silently falls back to defaults when no file exists; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return Default(), nil
		}
		path = filepath.Join(home, ".handrom", "config.toml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// WriteSample writes the annotated sample configuration to path.
func WriteSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// ROMConfig merges the file overrides onto the clinical defaults.
func (c *Config) ROMConfig() rom.Config {
	cfg := rom.DefaultConfig()
	if c.ROM.MinTrackingConf > 0 {
		cfg.MinTrackingConf = c.ROM.MinTrackingConf
	}
	if c.ROM.MinVisibility > 0 {
		cfg.MinVisibility = c.ROM.MinVisibility
	}
	if c.ROM.MinAvgVisibility > 0 {
		cfg.MinAvgVisibility = c.ROM.MinAvgVisibility
	}
	if c.ROM.VisibleFrameFraction > 0 {
		cfg.VisibleFrameFraction = c.ROM.VisibleFrameFraction
	}
	if c.ROM.MaxFrameDelta > 0 {
		cfg.MaxFrameDelta = c.ROM.MaxFrameDelta
	}
	if c.ROM.ConsistencyWindow > 0 {
		cfg.ConsistencyWindow = c.ROM.ConsistencyWindow
	}
	if c.ROM.SmoothingWindow > 0 {
		cfg.SmoothingWindow = c.ROM.SmoothingWindow
	}
	if c.ROM.MinValidFrames > 0 {
		cfg.MinValidFrames = c.ROM.MinValidFrames
	}
	return cfg
}

// KapandjiProfile resolves the configured scoring variant.
func (c *Config) KapandjiProfile() (kapandji.Profile, error) {
	profile, err := kapandji.ProfileByName(c.Kapandji.Profile)
	if err != nil {
		return kapandji.Profile{}, err
	}
	if c.Kapandji.ReachThreshold > 0 {
		profile.ReachThreshold = c.Kapandji.ReachThreshold
	}
	return profile, nil
}

// EngineConfig builds the assessment engine configuration.
func (c *Config) EngineConfig() (assessment.Config, error) {
	profile, err := c.KapandjiProfile()
	if err != nil {
		return assessment.Config{}, err
	}
	return assessment.Config{
		ROM:      c.ROMConfig(),
		Kapandji: profile,
	}, nil
}
