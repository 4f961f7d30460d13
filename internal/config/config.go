package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigFile names the environment variable pointing at an optional YAML file.
const EnvConfigFile = "GATEWAY_CONFIG"

type AppConfig struct {
	// ProviderURL is the base URL of the temperature API. Empty makes every
	// provider call fail as a transport error.
	ProviderURL string `yaml:"provider_url"`

	Host string `yaml:"host"`
	Port string `yaml:"port"`

	// ProviderTimeout bounds each outbound call.
	ProviderTimeout time.Duration `yaml:"provider_timeout"`

	BreakerFailureThreshold int           `yaml:"breaker_failure_threshold"` // 0 disables the breaker
	BreakerOpenTimeout      time.Duration `yaml:"breaker_open_timeout"`

	// Provider probing.
	ProbeInterval time.Duration `yaml:"probe_interval"` // 0 disables probing
	ProbeHistory  int           `yaml:"probe_history"`  // max results kept (0 = unlimited)
	ProbeMaxAge   time.Duration `yaml:"probe_max_age"`  // max age of results (0 = unlimited)

	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *AppConfig {
	return &AppConfig{
		Host:                    "0.0.0.0",
		Port:                    "8082",
		ProviderTimeout:         10 * time.Second,
		BreakerFailureThreshold: 0,
		BreakerOpenTimeout:      30 * time.Second,
		ProbeInterval:           30 * time.Second,
		ProbeHistory:            20,
		ProbeMaxAge:             time.Hour,
		ReadTimeout:             10 * time.Second,
		WriteTimeout:            15 * time.Second,
		LogLevel:                "INFO",
		LogFormat:               "json",
	}
}

// Addr is the listen address.
func (c *AppConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Load reads configuration with sensible defaults. Values come from, in
// increasing priority: defaults, the YAML file at path (or $GATEWAY_CONFIG
// when path is empty), a .env file and the process environment.
func Load(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *AppConfig) loadEnv() error {
	c.ProviderURL = getenvDefault("TEMPERATURE_API_URL", c.ProviderURL)
	c.Host = getenvDefault("HOST", c.Host)
	c.Port = getenvDefault("PORT", c.Port)
	c.LogLevel = getenvDefault("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getenvDefault("LOG_FORMAT", c.LogFormat)

	var err error
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"PROVIDER_TIMEOUT", &c.ProviderTimeout},
		{"BREAKER_OPEN_TIMEOUT", &c.BreakerOpenTimeout},
		{"PROBE_INTERVAL", &c.ProbeInterval},
		{"PROBE_MAX_AGE", &c.ProbeMaxAge},
		{"READ_TIMEOUT", &c.ReadTimeout},
		{"WRITE_TIMEOUT", &c.WriteTimeout},
	}
	for _, d := range durations {
		if *d.dst, err = getenvDuration(d.key, *d.dst); err != nil {
			return err
		}
	}

	if c.BreakerFailureThreshold, err = getenvInt("BREAKER_FAILURE_THRESHOLD", c.BreakerFailureThreshold); err != nil {
		return err
	}
	if c.ProbeHistory, err = getenvInt("PROBE_HISTORY", c.ProbeHistory); err != nil {
		return err
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
