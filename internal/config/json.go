package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmarkelov/riotswitch/internal/flagx"
	"github.com/dmarkelov/riotswitch/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies
// on timex.Duration so JSON can specify intervals either as strings like
// "1s" or as integer nanoseconds. After parsing, values are copied into
// the runtime Config.
type JsonConfig struct {
	DataDir             string         `json:"data_dir"`
	RiotClientPath      string         `json:"riot_client_path"`
	ScriptHostPath      string         `json:"script_host_path"`
	ClipboardClearCmd   string         `json:"clipboard_clear_cmd"`
	WindowCheckInterval timex.Duration `json:"window_check_interval"`
	WindowCheckAttempts int            `json:"window_check_attempts"`
	SettleDelay         timex.Duration `json:"settle_delay"`
	ClipboardClearDelay timex.Duration `json:"clipboard_clear_delay"`
	SilentLoginTimeout  timex.Duration `json:"silent_login_timeout"`
	PartyPollInterval   timex.Duration `json:"party_poll_interval"`
	PartyGracePeriod    timex.Duration `json:"party_grace_period"`
	PartyRetryCountdown timex.Duration `json:"party_retry_countdown"`
	RequestsPerSecond   float64        `json:"requests_per_second"`
}

// parseJson overlays cfg with values loaded from the JSON file named by
// the -c/-config flags. Absent file path means no JSON layer. Zero-valued
// JSON fields leave the existing config value untouched.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.RiotClientPath != "" {
		cfg.RiotClientPath = jc.RiotClientPath
	}
	if jc.ScriptHostPath != "" {
		cfg.ScriptHostPath = jc.ScriptHostPath
	}
	if jc.ClipboardClearCmd != "" {
		cfg.ClipboardClearCmd = jc.ClipboardClearCmd
	}
	if jc.WindowCheckInterval.Duration != 0 {
		cfg.WindowCheckInterval = time.Duration(jc.WindowCheckInterval.Duration)
	}
	if jc.WindowCheckAttempts != 0 {
		cfg.WindowCheckAttempts = jc.WindowCheckAttempts
	}
	if jc.SettleDelay.Duration != 0 {
		cfg.SettleDelay = time.Duration(jc.SettleDelay.Duration)
	}
	if jc.ClipboardClearDelay.Duration != 0 {
		cfg.ClipboardClearDelay = time.Duration(jc.ClipboardClearDelay.Duration)
	}
	if jc.SilentLoginTimeout.Duration != 0 {
		cfg.SilentLoginTimeout = time.Duration(jc.SilentLoginTimeout.Duration)
	}
	if jc.PartyPollInterval.Duration != 0 {
		cfg.PartyPollInterval = time.Duration(jc.PartyPollInterval.Duration)
	}
	if jc.PartyGracePeriod.Duration != 0 {
		cfg.PartyGracePeriod = time.Duration(jc.PartyGracePeriod.Duration)
	}
	if jc.PartyRetryCountdown.Duration != 0 {
		cfg.PartyRetryCountdown = time.Duration(jc.PartyRetryCountdown.Duration)
	}
	if jc.RequestsPerSecond != 0 {
		cfg.RequestsPerSecond = jc.RequestsPerSecond
	}
}
