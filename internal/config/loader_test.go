package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/omochice/socket-draughts/internal/config"
)

func clientFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("client", pflag.ContinueOnError)
	config.RegisterClientFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return fs
}

func TestLoadClient_Defaults(t *testing.T) {
	cfg, err := config.LoadClient(clientFlags(t))
	if err != nil {
		t.Fatalf("LoadClient() error = %v", err)
	}

	if cfg.Profile != config.ProfileStandard {
		t.Errorf("Profile = %q, want %q", cfg.Profile, config.ProfileStandard)
	}
	if cfg.DialTimeout != 10*time.Second {
		t.Errorf("DialTimeout = %v, want 10s", cfg.DialTimeout)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Record != "" {
		t.Errorf("Record = %q, want empty", cfg.Record)
	}
}

func TestLoadClient_Flags(t *testing.T) {
	cfg, err := config.LoadClient(clientFlags(t, "--profile", "legacy", "--dial-timeout", "3s", "--record", "out.bin"))
	if err != nil {
		t.Fatalf("LoadClient() error = %v", err)
	}

	if cfg.Profile != config.ProfileLegacy {
		t.Errorf("Profile = %q, want legacy", cfg.Profile)
	}
	if cfg.DialTimeout != 3*time.Second {
		t.Errorf("DialTimeout = %v, want 3s", cfg.DialTimeout)
	}
	if cfg.Record != "out.bin" {
		t.Errorf("Record = %q, want out.bin", cfg.Record)
	}
}

func TestLoadClient_Env(t *testing.T) {
	t.Setenv("DRAUGHTS_LOG_LEVEL", "debug")

	cfg, err := config.LoadClient(clientFlags(t))
	if err != nil {
		t.Fatalf("LoadClient() error = %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadClient_File(t *testing.T) {
	dir := t.TempDir()
	data := []byte("profile: legacy\nlog:\n  file: client.log\n")
	if err := os.WriteFile(filepath.Join(dir, "draughts.yaml"), data, 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := config.LoadClient(clientFlags(t, "--config", dir))
	if err != nil {
		t.Fatalf("LoadClient() error = %v", err)
	}
	if cfg.Profile != config.ProfileLegacy {
		t.Errorf("Profile = %q, want legacy", cfg.Profile)
	}
	if cfg.Log.File != "client.log" {
		t.Errorf("Log.File = %q, want client.log", cfg.Log.File)
	}
}

func TestLoadClient_UnknownProfile(t *testing.T) {
	if _, err := config.LoadClient(clientFlags(t, "--profile", "fancy")); err == nil {
		t.Error("LoadClient() with unknown profile returned nil error")
	}
}

func TestLoadServer(t *testing.T) {
	fs := pflag.NewFlagSet("server", pflag.ContinueOnError)
	config.RegisterServerFlags(fs)
	if err := fs.Parse([]string{"--listen", ":0", "--max-games", "2"}); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}

	cfg, err := config.LoadServer(fs)
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.Listen != ":0" {
		t.Errorf("Listen = %q, want :0", cfg.Listen)
	}
	if cfg.MaxGames != 2 {
		t.Errorf("MaxGames = %d, want 2", cfg.MaxGames)
	}
	if cfg.MaxPlayers != 16 {
		t.Errorf("MaxPlayers = %d, want 16", cfg.MaxPlayers)
	}
	if cfg.Mode != config.ModeUnified {
		t.Errorf("Mode = %q, want %q", cfg.Mode, config.ModeUnified)
	}
	if cfg.DetectTimeout != 250*time.Millisecond {
		t.Errorf("DetectTimeout = %s, want 250ms", cfg.DetectTimeout)
	}
}

func TestLoadServer_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"one player", []string{"--max-players", "1"}},
		{"no games", []string{"--max-games", "0"}},
		{"unknown mode", []string{"--mode", "udp"}},
		{"zero detect timeout", []string{"--detect-timeout", "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := pflag.NewFlagSet("server", pflag.ContinueOnError)
			config.RegisterServerFlags(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("failed to parse flags: %v", err)
			}

			if _, err := config.LoadServer(fs); err == nil {
				t.Errorf("LoadServer(%v) returned nil error", tt.args)
			}
		})
	}
}
