package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the switcher.
//
// Durations are time.Duration values (e.g. 1*time.Second). Paths are
// absolute or relative to the working directory.
type Config struct {
	// DataDir is where the two vault documents (accounts.json,
	// sessions.json) live.
	DataDir string

	// RiotClientPath is the launcher executable started on a switch.
	RiotClientPath string

	// ScriptHostPath is the external script runner that injects
	// keystrokes into the game client's login window.
	ScriptHostPath string

	// ClipboardClearCmd, when non-empty, is executed after the password
	// step to wipe the OS clipboard.
	ClipboardClearCmd string

	// Window-detection cadence for the automation orchestrator.
	WindowCheckInterval time.Duration
	WindowCheckAttempts int

	// SettleDelay is the pause between killing the old client and
	// launching the new one.
	SettleDelay time.Duration

	// ClipboardClearDelay is how long after typing the password the
	// clipboard wipe runs.
	ClipboardClearDelay time.Duration

	// SilentLoginTimeout bounds a hidden-view login attempt.
	SilentLoginTimeout time.Duration

	// Party poller cadence.
	PartyPollInterval   time.Duration
	PartyGracePeriod    time.Duration
	PartyRetryCountdown time.Duration

	// RequestsPerSecond throttles outbound vendor API calls.
	RequestsPerSecond float64
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	c.DataDir = filepath.Join(home, ".riotswitch")
	c.RiotClientPath = `C:\Riot Games\Riot Client\RiotClientServices.exe`
	c.ScriptHostPath = "riotswitch-typer"
	c.ClipboardClearCmd = ""
	c.WindowCheckInterval = 1 * time.Second
	c.WindowCheckAttempts = 30
	c.SettleDelay = 2 * time.Second
	c.ClipboardClearDelay = 2 * time.Second
	c.SilentLoginTimeout = 10 * time.Second
	c.PartyPollInterval = 5 * time.Second
	c.PartyGracePeriod = 5 * time.Second
	c.PartyRetryCountdown = 10 * time.Second
	c.RequestsPerSecond = 10
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
