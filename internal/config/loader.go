// Package config loads client and server settings from an optional YAML file,
// DRAUGHTS_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configName = "draughts"
	envPrefix  = "DRAUGHTS"
)

// RegisterClientFlags defines the client flags on fs.
func RegisterClientFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "Directory containing draughts.yaml")
	fs.String("log-level", "warn", "Minimum log level (debug, info, warn, error)")
	fs.String("log-file", "", "Write logs to this file instead of stderr")
	fs.Duration("dial-timeout", 10*time.Second, "Timeout for connecting to the server")
	fs.String("profile", ProfileStandard, "Protocol profile (standard, legacy)")
	fs.String("record", "", "Record a session transcript to this file")
}

// RegisterServerFlags defines the server flags on fs.
func RegisterServerFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "Directory containing draughts.yaml")
	fs.String("log-level", "info", "Minimum log level (debug, info, warn, error)")
	fs.String("log-file", "", "Write logs to this file instead of stderr")
	fs.StringP("listen", "l", ":1100", "Address to listen on for TCP and WebSocket clients")
	fs.String("mode", ModeUnified, "Listener mode (unified, tcp, ws)")
	fs.Duration("detect-timeout", 250*time.Millisecond, "How long a unified listener waits for an HTTP request before treating a client as raw TCP")
	fs.Int("max-players", 16, "Maximum number of connected players")
	fs.Int("max-games", 8, "Maximum number of concurrent games")
}

// LoadClient resolves the client configuration.
func LoadClient(fs *pflag.FlagSet) (*Client, error) {
	v, err := newViper(fs, map[string]string{
		"log.level":    "log-level",
		"log.file":     "log-file",
		"dial_timeout": "dial-timeout",
		"profile":      "profile",
		"record":       "record",
	})
	if err != nil {
		return nil, err
	}
	v.SetDefault("log.level", "warn")
	v.SetDefault("dial_timeout", 10*time.Second)
	v.SetDefault("profile", ProfileStandard)

	var cfg Client
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validateClient(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadServer resolves the server configuration.
func LoadServer(fs *pflag.FlagSet) (*Server, error) {
	v, err := newViper(fs, map[string]string{
		"log.level":      "log-level",
		"log.file":       "log-file",
		"listen":         "listen",
		"mode":           "mode",
		"detect_timeout": "detect-timeout",
		"max_players":    "max-players",
		"max_games":      "max-games",
	})
	if err != nil {
		return nil, err
	}
	v.SetDefault("log.level", "info")
	v.SetDefault("listen", ":1100")
	v.SetDefault("mode", ModeUnified)
	v.SetDefault("detect_timeout", 250*time.Millisecond)
	v.SetDefault("max_players", 16)
	v.SetDefault("max_games", 8)

	var cfg Server
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validateServer(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newViper(fs *pflag.FlagSet, bindings map[string]string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")

	if fs != nil {
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			v.AddConfigPath(f.Value.String())
		}
	}
	v.AddConfigPath(".")
	v.AddConfigPath("config")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for key, name := range bindings {
			f := fs.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return v, nil
}

func validateClient(cfg *Client) error {
	switch cfg.Profile {
	case ProfileStandard, ProfileLegacy:
	default:
		return fmt.Errorf("unknown profile '%s'", cfg.Profile)
	}
	if cfg.DialTimeout <= 0 {
		return fmt.Errorf("dial timeout must be positive, got %s", cfg.DialTimeout)
	}
	return nil
}

func validateServer(cfg *Server) error {
	if cfg.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	switch cfg.Mode {
	case ModeUnified, ModeTCP, ModeWS:
	default:
		return fmt.Errorf("unknown mode '%s'", cfg.Mode)
	}
	if cfg.Mode == ModeUnified && cfg.DetectTimeout <= 0 {
		return fmt.Errorf("detect timeout must be positive, got %s", cfg.DetectTimeout)
	}
	if cfg.MaxPlayers < 2 {
		return fmt.Errorf("max players must be at least 2, got %d", cfg.MaxPlayers)
	}
	if cfg.MaxGames < 1 {
		return fmt.Errorf("max games must be at least 1, got %d", cfg.MaxGames)
	}
	return nil
}
