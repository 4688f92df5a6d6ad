package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gardar/ocrlens/pkg/confidence"
	"github.com/gardar/ocrlens/pkg/display"
	"github.com/gardar/ocrlens/pkg/interaction"
)

// Config represents the complete configuration for ocrlens. It is loaded
// from configuration files, environment variables and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Confidence tier thresholds
	Confidence confidence.Thresholds `mapstructure:"confidence" yaml:"confidence" json:"confidence"`

	// Initial display flags
	Display display.State `mapstructure:"display" yaml:"display" json:"display"`

	// Hover and popup timing
	Interaction InteractionConfig `mapstructure:"interaction" yaml:"interaction" json:"interaction"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Rendering of the page and its background
	Render RenderConfig `mapstructure:"render" yaml:"render" json:"render"`
}

// InteractionConfig contains hover control and popup timing.
type InteractionConfig struct {
	HideDelayMs      int `mapstructure:"hide_delay_ms" yaml:"hide_delay_ms" json:"hide_delay_ms"`
	DetailDurationMs int `mapstructure:"detail_duration_ms" yaml:"detail_duration_ms" json:"detail_duration_ms"`
	NotifyDurationMs int `mapstructure:"notify_duration_ms" yaml:"notify_duration_ms" json:"notify_duration_ms"`
}

// ServerConfig contains viewer server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// RenderConfig contains rendering settings.
type RenderConfig struct {
	// ImageDir is the directory the background image is resolved against.
	// Empty means the directory of the input file.
	ImageDir string `mapstructure:"image_dir" yaml:"image_dir" json:"image_dir"`
	// DebugLine is the 0-based line debug-line prints when no line is given;
	// negative means none.
	DebugLine int `mapstructure:"debug_line" yaml:"debug_line" json:"debug_line"`
}

var validLogLevels = []string{"debug", "info", "warn", "error"}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() Config {
	return Config{
		LogLevel:   "info",
		Verbose:    false,
		Confidence: confidence.DefaultThresholds,
		Display:    display.DefaultState(),
		Interaction: InteractionConfig{
			HideDelayMs:      int(interaction.DefaultHideDelay / time.Millisecond),
			DetailDurationMs: int(interaction.DefaultDetailDuration / time.Millisecond),
			NotifyDurationMs: int(interaction.DefaultNotifyDuration / time.Millisecond),
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			TimeoutSec:      30,
			ShutdownTimeout: 10,
		},
		Render: RenderConfig{
			DebugLine: -1,
		},
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if err := c.Confidence.Validate(); err != nil {
		return fmt.Errorf("invalid confidence thresholds: %w", err)
	}

	if c.Interaction.HideDelayMs < 0 {
		return fmt.Errorf("invalid hide delay: %d (must not be negative)", c.Interaction.HideDelayMs)
	}
	if c.Interaction.DetailDurationMs < 0 {
		return fmt.Errorf("invalid detail duration: %d (must not be negative)", c.Interaction.DetailDurationMs)
	}
	if c.Interaction.NotifyDurationMs < 0 {
		return fmt.Errorf("invalid notification duration: %d (must not be negative)", c.Interaction.NotifyDurationMs)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("invalid shutdown timeout: %d (must not be negative)", c.Server.ShutdownTimeout)
	}

	return nil
}

// InteractionOptions converts the timing settings to controller options.
// A zero setting leaves the controller default in place.
func (c *Config) InteractionOptions() interaction.Options {
	return interaction.Options{
		HideDelay:      time.Duration(c.Interaction.HideDelayMs) * time.Millisecond,
		DetailDuration: time.Duration(c.Interaction.DetailDurationMs) * time.Millisecond,
		NotifyDuration: time.Duration(c.Interaction.NotifyDurationMs) * time.Millisecond,
	}
}

// Address is the host:port the server listens on.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
