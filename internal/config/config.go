// Package config loads the application configuration from a YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ayusman/greeva/internal/exercise"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig    `yaml:"server"`
	Camera   CameraConfig    `yaml:"camera"`
	Database DatabaseConfig  `yaml:"database"`
	Exercise exercise.Config `yaml:"exercise"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// CameraConfig holds frame acquisition settings.
type CameraConfig struct {
	DeviceID int `yaml:"device_id"`

	// MotionThreshold is the percentage of changed pixels required to
	// switch the pipeline into active mode.
	MotionThreshold float64 `yaml:"motion_threshold"`
}

// DatabaseConfig holds the SQLite storage location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// Default returns the configuration used when no file is provided.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Camera: CameraConfig{
			DeviceID:        0,
			MotionThreshold: 1.0,
		},
		Exercise: exercise.DefaultConfig(),
	}
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides. An empty path skips the file and
// uses the defaults. Env vars use the prefix GREEVA_:
//
//	GREEVA_SERVER_ADDR, GREEVA_CAMERA_DEVICE, GREEVA_DB_PATH
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GREEVA_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("GREEVA_CAMERA_DEVICE"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			cfg.Camera.DeviceID = id
		}
	}
	if v := os.Getenv("GREEVA_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
}

func (c *Config) validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr must not be empty")
	}
	if c.Camera.DeviceID < 0 {
		return fmt.Errorf("camera device_id must not be negative")
	}

	ex := c.Exercise
	if ex.CalibrationFrames <= 0 {
		return fmt.Errorf("calibration_frames must be positive, got %d", ex.CalibrationFrames)
	}
	if ex.Smoothing < 0 || ex.Smoothing > 1 {
		return fmt.Errorf("confidence_smoothing must be in [0,1], got %f", ex.Smoothing)
	}
	if ex.MinVisibility < 0 || ex.MinVisibility > 1 {
		return fmt.Errorf("min_visibility must be in [0,1], got %f", ex.MinVisibility)
	}
	for name, threshold := range map[string]float64{
		"flexion_threshold":          ex.FlexionThreshold,
		"extension_threshold":        ex.ExtensionThreshold,
		"tilt_threshold":             ex.TiltThreshold,
		"rotation_threshold":         ex.RotationThreshold,
		"chin_tuck_offset_threshold": ex.ChinTuckOffsetThreshold,
		"chin_tuck_depth_threshold":  ex.ChinTuckDepthThreshold,
	} {
		if threshold <= 0 {
			return fmt.Errorf("%s must be positive, got %f", name, threshold)
		}
	}

	return nil
}
