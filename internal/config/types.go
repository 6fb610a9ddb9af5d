package config

import "time"

// Logging configures the zap logger.
type Logging struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	File   string `mapstructure:"file"`   // blank writes to stderr
	Caller bool   `mapstructure:"caller"` // include caller in log lines
}

// Client contains the options of the game client.
type Client struct {
	Log         Logging       `mapstructure:"log"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Profile     string        `mapstructure:"profile"` // standard or legacy
	Record      string        `mapstructure:"record"`  // transcript path, blank disables
}

// Server contains the options of the reference server.
type Server struct {
	Log           Logging       `mapstructure:"log"`
	Listen        string        `mapstructure:"listen"`
	Mode          string        `mapstructure:"mode"` // unified, tcp or ws
	DetectTimeout time.Duration `mapstructure:"detect_timeout"`
	MaxPlayers    int           `mapstructure:"max_players"`
	MaxGames      int           `mapstructure:"max_games"`
}

// Known protocol profiles.
const (
	ProfileStandard = "standard"
	ProfileLegacy   = "legacy"
)

// Server listener modes.
const (
	ModeUnified = "unified" // raw TCP and WebSocket on one port
	ModeTCP     = "tcp"
	ModeWS      = "ws"
)
