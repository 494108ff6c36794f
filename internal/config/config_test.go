package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.NotEmpty(t, c.DataDir)
	assert.Equal(t, 1*time.Second, c.WindowCheckInterval)
	assert.Equal(t, 30, c.WindowCheckAttempts)
	assert.Equal(t, 2*time.Second, c.SettleDelay)
	assert.Equal(t, 2*time.Second, c.ClipboardClearDelay)
	assert.Equal(t, 10*time.Second, c.SilentLoginTimeout)
	assert.Equal(t, 5*time.Second, c.PartyPollInterval)
	assert.Equal(t, 5*time.Second, c.PartyGracePeriod)
	assert.Equal(t, 10*time.Second, c.PartyRetryCountdown)
	assert.Equal(t, float64(10), c.RequestsPerSecond)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, 30, cfg.WindowCheckAttempts)
	assert.Equal(t, 5*time.Second, cfg.PartyPollInterval)
}
