// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. Unset keys stay nil so
// that defaults and CLI flags can tell them apart from explicit zero values.
type FileConfig struct {
	Camera    CameraConfig    `toml:"camera"`
	Detector  DetectorConfig  `toml:"detector"`
	Control   ControlConfig   `toml:"control"`
	Resources ResourcesConfig `toml:"resources"`
	Plugins   PluginsConfig   `toml:"plugins"`
	Server    ServerConfig    `toml:"server"`
	UI        UIConfig        `toml:"ui"`
}

// CameraConfig maps capture settings.
type CameraConfig struct {
	Device *int `toml:"device"`
	Width  *int `toml:"width"`
	Height *int `toml:"height"`
}

// DetectorConfig maps landmark detector settings.
type DetectorConfig struct {
	MinDetection *float64 `toml:"min-detection"`
	MinTracking  *float64 `toml:"min-tracking"`
	Script       *string  `toml:"script"`
	Python       *string  `toml:"python"`
}

// ControlConfig maps gesture effect tuning.
type ControlConfig struct {
	VolumeStep  *float64 `toml:"volume-step"`
	ScrollTicks *int     `toml:"scroll-ticks"`
}

// ResourcesConfig maps the one-shot browser targets.
type ResourcesConfig struct {
	Victory *string `toml:"victory"`
	Swag    *string `toml:"swag"`
}

// PluginsConfig maps plugin discovery and execution.
type PluginsConfig struct {
	Dir       *string `toml:"dir"`
	TimeoutMs *int    `toml:"timeout-ms"`
}

// ServerConfig maps the status HTTP server.
type ServerConfig struct {
	Addr *string `toml:"addr"`
}

// UIConfig maps presentation options.
type UIConfig struct {
	Window *bool `toml:"window"`
	Tray   *bool `toml:"tray"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
