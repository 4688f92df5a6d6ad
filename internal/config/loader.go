package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "ocrlens"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "OCRLENS"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoaderWith creates a loader over v.
func NewLoaderWith(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// Load loads configuration from the config file found on the search paths
// (or configFile when set), environment variables and defaults, and
// validates it.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile != "" {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configFile)
		}
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		l.addConfigPaths()
	}

	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we'll use defaults and env vars
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// ConfigFileUsed returns the path of the config file used.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// addConfigPaths adds the standard configuration search paths.
func (l *Loader) addConfigPaths() {
	for _, p := range SearchPaths() {
		l.v.AddConfigPath(p)
	}
}

// setupEnvironmentVariables configures environment variable handling.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	// Replace dots and dashes with underscores in env var names
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults sets default values for all configuration options. Every key
// needs a default for AutomaticEnv to see it during Unmarshal.
func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)

	l.v.SetDefault("confidence.high", defaults.Confidence.High)
	l.v.SetDefault("confidence.medium", defaults.Confidence.Medium)

	l.v.SetDefault("display.show_line_boxes", defaults.Display.ShowLineBoxes)
	l.v.SetDefault("display.show_word_boxes", defaults.Display.ShowWordBoxes)
	l.v.SetDefault("display.show_xhtml_text", defaults.Display.ShowXHTMLText)
	l.v.SetDefault("display.show_svg_text", defaults.Display.ShowSVGText)
	l.v.SetDefault("display.enable_hover_controls", defaults.Display.EnableHoverControls)
	l.v.SetDefault("display.show_svg_section", defaults.Display.ShowSVGSection)
	l.v.SetDefault("display.show_svg_background", defaults.Display.ShowSVGBackground)

	l.v.SetDefault("interaction.hide_delay_ms", defaults.Interaction.HideDelayMs)
	l.v.SetDefault("interaction.detail_duration_ms", defaults.Interaction.DetailDurationMs)
	l.v.SetDefault("interaction.notify_duration_ms", defaults.Interaction.NotifyDurationMs)

	l.v.SetDefault("server.host", defaults.Server.Host)
	l.v.SetDefault("server.port", defaults.Server.Port)
	l.v.SetDefault("server.cors_origin", defaults.Server.CORSOrigin)
	l.v.SetDefault("server.timeout_sec", defaults.Server.TimeoutSec)
	l.v.SetDefault("server.shutdown_timeout", defaults.Server.ShutdownTimeout)

	l.v.SetDefault("render.image_dir", defaults.Render.ImageDir)
	l.v.SetDefault("render.debug_line", defaults.Render.DebugLine)
}

// SearchPaths returns the paths where configuration files are searched.
func SearchPaths() []string {
	paths := []string{"."}

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		paths = append(paths, filepath.Join(configDir, "ocrlens"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "ocrlens"))
	}

	paths = append(paths, "/etc/ocrlens")

	return paths
}
