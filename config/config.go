// Package config loads engine settings from the environment, optionally
// seeded from .env files via godotenv. Every knob has a production default;
// only deliberate overrides need to be set.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/lifecycle"
	"github.com/hupe1980/agentrelay/logging"
)

// Environment variable names.
const (
	EnvMaxConcurrentRequests = "AGENTRELAY_MAX_CONCURRENT_REQUESTS"
	EnvDefaultTimeoutMinutes = "AGENTRELAY_DEFAULT_TIMEOUT_MINUTES"
	EnvMaxTokensPerPackage   = "AGENTRELAY_MAX_TOKENS_PER_PACKAGE"
	EnvDefaultStrategy       = "AGENTRELAY_DEFAULT_INTEGRATION_STRATEGY"
	EnvConfidenceThreshold   = "AGENTRELAY_CONFIDENCE_THRESHOLD"
	EnvMaxSpawnDepth         = "AGENTRELAY_MAX_SPAWN_DEPTH"
	EnvHTTPAddr              = "AGENTRELAY_HTTP_ADDR"
	EnvLogLevel              = "AGENTRELAY_LOG_LEVEL"
	EnvLogFormat             = "AGENTRELAY_LOG_FORMAT"
)

// Config is the resolved engine configuration.
type Config struct {
	MaxConcurrentRequests int
	DefaultTimeout        time.Duration
	MaxTokensPerPackage   int
	DefaultStrategy       core.IntegrationStrategy
	ConfidenceThreshold   float64
	MaxSpawnDepth         int
	HTTPAddr              string
	LogLevel              logging.LogLevel
	LogFormat             string
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		MaxConcurrentRequests: 50,
		DefaultTimeout:        30 * time.Minute,
		MaxTokensPerPackage:   4000,
		DefaultStrategy:       core.StrategyMerge,
		ConfidenceThreshold:   0.7,
		MaxSpawnDepth:         3,
		HTTPAddr:              ":8080",
		LogLevel:              logging.LogLevelInfo,
		LogFormat:             "json",
	}
}

// Load resolves the configuration from the process environment. Any given
// .env files are loaded first without overriding variables already set; a
// missing file is not an error.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	cfg := Default()

	var err error
	if cfg.MaxConcurrentRequests, err = envInt(EnvMaxConcurrentRequests, cfg.MaxConcurrentRequests); err != nil {
		return Config{}, err
	}
	if cfg.MaxConcurrentRequests < 1 {
		return Config{}, fmt.Errorf("%s must be at least 1", EnvMaxConcurrentRequests)
	}

	timeoutMinutes, err := envInt(EnvDefaultTimeoutMinutes, int(cfg.DefaultTimeout/time.Minute))
	if err != nil {
		return Config{}, err
	}
	if timeoutMinutes < 0 {
		return Config{}, fmt.Errorf("%s must not be negative", EnvDefaultTimeoutMinutes)
	}
	cfg.DefaultTimeout = time.Duration(timeoutMinutes) * time.Minute

	if cfg.MaxTokensPerPackage, err = envInt(EnvMaxTokensPerPackage, cfg.MaxTokensPerPackage); err != nil {
		return Config{}, err
	}
	if cfg.MaxSpawnDepth, err = envInt(EnvMaxSpawnDepth, cfg.MaxSpawnDepth); err != nil {
		return Config{}, err
	}
	if cfg.ConfidenceThreshold, err = envFloat(EnvConfidenceThreshold, cfg.ConfidenceThreshold); err != nil {
		return Config{}, err
	}

	if v := os.Getenv(EnvDefaultStrategy); v != "" {
		strategy := core.IntegrationStrategy(v)
		if !strategy.Valid() {
			return Config{}, fmt.Errorf("%s: unknown integration strategy %q", EnvDefaultStrategy, v)
		}
		cfg.DefaultStrategy = strategy
	}

	if v := os.Getenv(EnvHTTPAddr); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		switch v {
		case "debug":
			cfg.LogLevel = logging.LogLevelDebug
		case "info":
			cfg.LogLevel = logging.LogLevelInfo
		case "warn":
			cfg.LogLevel = logging.LogLevelWarn
		case "error":
			cfg.LogLevel = logging.LogLevelError
		default:
			return Config{}, fmt.Errorf("%s: unknown log level %q", EnvLogLevel, v)
		}
	}

	return cfg, nil
}

// Lifecycle maps the configuration onto the lifecycle manager's config.
func (c Config) Lifecycle() lifecycle.Config {
	lc := lifecycle.DefaultConfig
	lc.MaxConcurrentRequests = c.MaxConcurrentRequests
	lc.DefaultTimeout = c.DefaultTimeout
	lc.MaxTokensPerPackage = c.MaxTokensPerPackage
	lc.MaxSpawnDepth = c.MaxSpawnDepth
	lc.DefaultStrategy = c.DefaultStrategy
	lc.ConfidenceThreshold = c.ConfidenceThreshold
	return lc
}

func envInt(name string, fallback int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

func envFloat(name string, fallback float64) (float64, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}
