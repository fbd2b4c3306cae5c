// Package config provides YAML-based configuration loading for the
// modem packer node.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root application configuration.
type Config struct {
	// AppName optional logical name of the node
	AppName string `mapstructure:"app_name"`

	// Log holds logging configuration
	Log LogConfig `mapstructure:"log"`

	// Modem holds the packer/parser protocol options
	Modem ModemConfig `mapstructure:"modem"`

	// Links lists the modem link endpoints to bring up
	Links []LinkConfig `mapstructure:"links"`

	// GeneralOutgoing/GeneralIncoming describe configurable passthrough
	// message bindings (name <-> wire id <-> external topic).
	GeneralOutgoing []GeneralBinding `mapstructure:"general_outgoing"`
	GeneralIncoming []GeneralBinding `mapstructure:"general_incoming"`
}

// ModemConfig holds the protocol-level options of the packer pair.
type ModemConfig struct {
	// TargetAddress is the modem address envelopes are published to.
	TargetAddress uint8 `mapstructure:"target_address"`
	// MaxEnvelopeBytes bounds header+body length per burst message.
	MaxEnvelopeBytes int `mapstructure:"max_envelope_bytes"`
	// RequiringAck lists type names whose receipt triggers an ack.
	RequiringAck []string `mapstructure:"requiring_ack"`
	// Retries/RetryDelayS are reserved for the future unacked-resend
	// logic; they are loaded and surfaced but not consumed by the core.
	Retries     int `mapstructure:"retries"`
	RetryDelayS int `mapstructure:"retry_delay_s"`
}

// GeneralBinding declares one general message type supplied by
// configuration. The body is passed through opaquely and routed by
// Topic; ContentType selects the payload codec producers use.
type GeneralBinding struct {
	Name        string `mapstructure:"name"`
	ID          uint8  `mapstructure:"id"`
	Topic       string `mapstructure:"topic"`
	ContentType string `mapstructure:"content_type"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format: console or json
	Format string `mapstructure:"format"`
	// Outputs: list of outputs: stdout, stderr, or file paths
	Outputs []string `mapstructure:"outputs"`

	// Rotation controls file rotation when writing to files
	Rotation RotationConfig `mapstructure:"rotation"`
	// Development toggles development-friendly logging options
	Development bool `mapstructure:"development"`
}

// RotationConfig controls log file rotation for file outputs.
type RotationConfig struct {
	Enable     bool   `mapstructure:"enable"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Default returns a Config populated with the historical deployment
// defaults.
func Default() *Config {
	return &Config{
		AppName: "modem-node",
		Log: LogConfig{
			Level:       "info",
			Format:      "console",
			Outputs:     []string{"stdout"},
			Development: true,
			Rotation: RotationConfig{
				Enable:     false,
				Filename:   "logs/modem.log",
				MaxSizeMB:  50,
				MaxBackups: 3,
				MaxAgeDays: 28,
				Compress:   true,
			},
		},
		Modem: ModemConfig{
			TargetAddress:    5,
			MaxEnvelopeBytes: 9000,
			RequiringAck:     []string{"position_request", "body_request"},
			Retries:          3,
			RetryDelayS:      30,
		},
		Links: []LinkConfig{
			{Kind: "udp", Listen: ":7450"},
		},
	}
}

// Load reads configuration from the provided path (if non-empty),
// otherwise it searches common locations and supports environment
// overrides. Environment variables use the prefix MODEM and `.`/`-` are
// replaced with `_`. Example: MODEM_LOG_LEVEL=debug
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("MODEM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// seed defaults for viper so env-only configs work
	v.SetDefault("app_name", cfg.AppName)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.outputs", cfg.Log.Outputs)
	v.SetDefault("log.development", cfg.Log.Development)
	v.SetDefault("log.rotation.enable", cfg.Log.Rotation.Enable)
	v.SetDefault("log.rotation.filename", cfg.Log.Rotation.Filename)
	v.SetDefault("log.rotation.max_size_mb", cfg.Log.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", cfg.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", cfg.Log.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", cfg.Log.Rotation.Compress)
	v.SetDefault("modem.target_address", cfg.Modem.TargetAddress)
	v.SetDefault("modem.max_envelope_bytes", cfg.Modem.MaxEnvelopeBytes)
	v.SetDefault("modem.requiring_ack", cfg.Modem.RequiringAck)
	v.SetDefault("modem.retries", cfg.Modem.Retries)
	v.SetDefault("modem.retry_delay_s", cfg.Modem.RetryDelayS)
	v.SetDefault("links", cfg.Links)

	// Choose config file
	if path == "" {
		if envPath := os.Getenv("MODEM_CONFIG"); envPath != "" {
			path = envPath
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		// Search common locations with base name `modem`
		v.SetConfigName("modem")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".modem-tools"))
		}
	}

	// Read config file if present; if not found, continue with defaults/env
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	lvl := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch lvl {
	case "debug", "info", "warn", "warning", "error":
		// ok
	default:
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}

	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if len(c.Log.Outputs) == 0 {
		c.Log.Outputs = []string{"stdout"}
	}
	if c.Modem.MaxEnvelopeBytes <= 0 {
		c.Modem.MaxEnvelopeBytes = 9000
	}
	for i := range c.Links {
		c.Links[i].Kind = strings.ToLower(strings.TrimSpace(c.Links[i].Kind))
	}
	for _, gm := range append(append([]GeneralBinding(nil), c.GeneralOutgoing...), c.GeneralIncoming...) {
		if gm.Name == "" || gm.ID == 0 {
			return fmt.Errorf("general binding %q: name and id (1-255) are required", gm.Name)
		}
		if gm.Topic == "" {
			return fmt.Errorf("general binding %q: topic is required", gm.Name)
		}
	}
	return nil
}

// MustLoad is a convenience that panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}
