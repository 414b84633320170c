package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeepsDefaultsForOmittedKeys(t *testing.T) {
	t.Parallel()

	raw := []byte(`
telegram:
  botToken: "123:abc"
lookup:
  fastPathTimeout: 7s
  sources: [duckduckgo, wikipedia_en]
database:
  driver: none
`)

	cfg, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, "https://api.telegram.org", cfg.Telegram.APIURL)
	assert.Equal(t, 7*time.Second, cfg.Lookup.FastPathTimeout)
	assert.Equal(t, 5*time.Second, cfg.Lookup.RequestTimeout)
	assert.Equal(t, []string{"duckduckgo", "wikipedia_en"}, cfg.Lookup.Sources)
	assert.Len(t, cfg.Lookup.ProgressSteps, 4)
	assert.Equal(t, "none", cfg.Database.Driver)
	assert.Equal(t, "lookupbot.db", cfg.Database.DSN)
	assert.Len(t, cfg.Wikipedia, 2)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestParseBreakerToggle(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte("breaker:\n  enabled: false\n"))
	require.NoError(t, err)
	assert.False(t, cfg.Breaker.Enabled)
	assert.Equal(t, uint32(5), cfg.Breaker.MinRequests)

	cfg, err = Parse([]byte("breaker:\n  minRequests: 20\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Breaker.Enabled)
	assert.Equal(t, uint32(20), cfg.Breaker.MinRequests)
	assert.Equal(t, 0.8, cfg.Breaker.FailureThreshold)
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("lookup: [unterminated"))
	assert.Error(t, err)
}

func TestDefaultProgressStepsSumToThirteenSeconds(t *testing.T) {
	t.Parallel()

	var total time.Duration
	for _, step := range defaultConfig().Lookup.ProgressSteps {
		total += step.Delay
	}
	assert.Equal(t, 13*time.Second, total)
	assert.Equal(t, 13*time.Second, defaultConfig().Lookup.FastPathTimeout)
}

func TestAssistantEnabled(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig().Assistant
	assert.False(t, cfg.Enabled())

	cfg.APIKey = "sk-test"
	assert.True(t, cfg.Enabled())
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("telegram:\n  botToken: from-file\nadmin:\n  addr: \":9000\"\n"), 0o600))

	t.Setenv(configPathEnv, path)
	t.Setenv(telegramTokenEnv, "from-env")
	t.Setenv(databaseDriverEnv, "postgres")
	t.Setenv(databaseDSNEnv, "postgres://bot@localhost/lookup")
	t.Setenv(logLevelEnv, "debug")

	cfg := Load()

	assert.Equal(t, "from-env", cfg.Telegram.BotToken)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://bot@localhost/lookup", cfg.Database.DSN)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, ":9000", cfg.Admin.Addr)
}

func TestLoadFallsBackToDefaultsOnMissingFile(t *testing.T) {
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv(telegramTokenEnv, "")

	cfg := Load()

	assert.Equal(t, defaultConfig().Lookup, cfg.Lookup)
	assert.Empty(t, cfg.Telegram.BotToken)
}
