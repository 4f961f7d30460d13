package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment does not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvConfigFile, "TEMPERATURE_API_URL", "HOST", "PORT", "PROVIDER_TIMEOUT",
		"BREAKER_FAILURE_THRESHOLD", "BREAKER_OPEN_TIMEOUT", "PROBE_INTERVAL", "PROBE_HISTORY",
		"PROBE_MAX_AGE", "READ_TIMEOUT", "WRITE_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "", cfg.ProviderURL)
	assert.Equal(t, "0.0.0.0:8082", cfg.Addr())
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 0, cfg.BreakerFailureThreshold)
	assert.Equal(t, 30*time.Second, cfg.ProbeInterval)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEMPERATURE_API_URL", "http://temperature-api:8081")
	t.Setenv("PORT", "9090")
	t.Setenv("PROVIDER_TIMEOUT", "2s")
	t.Setenv("BREAKER_FAILURE_THRESHOLD", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://temperature-api:8081", cfg.ProviderURL)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	assert.Equal(t, 2*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 3, cfg.BreakerFailureThreshold)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider_url: http://from-file:8081
port: "7000"
provider_timeout: 3s
probe_interval: 0s
log_format: text
`), 0o600))

	t.Setenv(EnvConfigFile, path)
	t.Setenv("PORT", "7100")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://from-file:8081", cfg.ProviderURL)
	assert.Equal(t, "7100", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, time.Duration(0), cfg.ProbeInterval)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "0.0.0.0", cfg.Host)
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PROVIDER_TIMEOUT", "soon"},
		{"PROBE_INTERVAL", "10"},
		{"PROBE_HISTORY", "many"},
		{"BREAKER_FAILURE_THRESHOLD", "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid "+tt.key)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
