// Package config layers defaults, an optional playback.yaml, PLAYBACK_*
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/GNOME/orca-sub019/internal/bus"
)

// EnvPrefix prefixes every environment override, e.g. PLAYBACK_BUS_SOURCE.
const EnvPrefix = "PLAYBACK"

// Config is the effective runtime configuration.
type Config struct {
	LogLevel    string         `mapstructure:"log_level"    yaml:"log_level"    json:"log_level"`
	Format      string         `mapstructure:"format"       yaml:"format"       json:"format"`
	Dispatcher  string         `mapstructure:"dispatcher"   yaml:"dispatcher"   json:"dispatcher"`
	XdotoolPath string         `mapstructure:"xdotool_path" yaml:"xdotool_path" json:"xdotool_path"`
	Bus         BusConfig      `mapstructure:"bus"          yaml:"bus"          json:"bus"`
	Timeouts    TimeoutsConfig `mapstructure:"timeouts"     yaml:"timeouts"     json:"timeouts"`
	History     HistoryConfig  `mapstructure:"history"      yaml:"history"      json:"history"`
}

type BusConfig struct {
	Source     string `mapstructure:"source"      yaml:"source"      json:"source"`
	LogPrefix  string `mapstructure:"log_prefix"  yaml:"log_prefix"  json:"log_prefix"`
	Address    string `mapstructure:"address"     yaml:"address"     json:"address"`
	ControlURL string `mapstructure:"control_url" yaml:"control_url" json:"control_url"`
}

type TimeoutsConfig struct {
	Wait   time.Duration `mapstructure:"wait"   yaml:"wait"   json:"wait"`
	Settle time.Duration `mapstructure:"settle" yaml:"settle" json:"settle"`
}

type HistoryConfig struct {
	Path string `mapstructure:"path" yaml:"path" json:"path"`
}

// SetDefaults registers every key's default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("format", "text")
	v.SetDefault("dispatcher", "xdotool")
	v.SetDefault("xdotool_path", "")
	v.SetDefault("bus.source", "tail")
	v.SetDefault("bus.log_prefix", filepath.Join(os.TempDir(), "playback", "output"))
	v.SetDefault("bus.address", "")
	v.SetDefault("bus.control_url", "")
	v.SetDefault("timeouts.wait", 30*time.Second)
	v.SetDefault("timeouts.settle", time.Duration(0))
	v.SetDefault("history.path", "")
}

// Load reads the configuration into a Config. When file is empty,
// playback.yaml is looked up in the working directory and in the user
// config directory; a missing file is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("playback")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "playback"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerations and the fields each bus source requires.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.Format {
	case "text", "yaml", "json":
	default:
		return fmt.Errorf("unsupported format: %s (use text, yaml, or json)", c.Format)
	}
	switch c.Dispatcher {
	case "xdotool", "none":
	default:
		return fmt.Errorf("unsupported dispatcher: %s (use xdotool or none)", c.Dispatcher)
	}
	switch c.Bus.Source {
	case "tail":
		if c.Bus.LogPrefix == "" {
			return fmt.Errorf("bus.log_prefix is required for the tail source")
		}
	case "stream":
		if c.Bus.Address == "" {
			return fmt.Errorf("bus.address is required for the stream source")
		}
	default:
		return fmt.Errorf("unsupported bus.source: %s (use tail or stream)", c.Bus.Source)
	}
	if c.Timeouts.Wait <= 0 {
		return fmt.Errorf("timeouts.wait must be > 0")
	}
	if c.Timeouts.Settle < 0 {
		return fmt.Errorf("timeouts.settle must not be negative")
	}
	return nil
}

// BusAdapterConfig converts the bus section for bus.NewAdapter.
func (c *Config) BusAdapterConfig() bus.Config {
	return bus.Config{
		Source:     c.Bus.Source,
		LogPrefix:  c.Bus.LogPrefix,
		Address:    c.Bus.Address,
		ControlURL: c.Bus.ControlURL,
	}
}

// ParseLevel maps a log level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unsupported log_level: %s (use debug, info, warn, or error)", s)
}
