// Package config defines service configuration structures and loading hooks.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database file. Empty selects the in-memory store
	// (scores and board handles are lost on restart).
	DBPath string `koanf:"db_path"`

	// PublicBaseURL is the externally reachable base URL used to render
	// play links, e.g. "https://quickdraw.example.com".
	PublicBaseURL string `koanf:"public_base_url"`

	// TokenTTL bounds how long an issued play token stays valid.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// SweepInterval sets how often expired tokens are swept from memory.
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// RequiredRuns is the trial count a submission must report.
	RequiredRuns int `koanf:"required_runs"`

	// BoardSize is the number of entries rendered on the leaderboard message.
	BoardSize int `koanf:"board_size"`

	// MaxBoardLimit caps GET /board?limit.
	MaxBoardLimit int `koanf:"max_board_limit"`

	// DiscordToken enables the Discord front end when non-empty.
	DiscordToken string `koanf:"discord_token"`

	// CommandPrefix is the chat command that requests a play link.
	CommandPrefix string `koanf:"command_prefix"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		Addr:          ":9080",
		DBPath:        "quickdraw.db",
		PublicBaseURL: "http://localhost:9080",
		TokenTTL:      15 * time.Minute,
		SweepInterval: 60 * time.Second,
		RequiredRuns:  50,
		BoardSize:     20,
		MaxBoardLimit: 100,
		CommandPrefix: "!quickdraw",
	}
}
