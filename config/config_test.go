package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.MaxConcurrentRequests)
	assert.Equal(t, 30*time.Minute, cfg.DefaultTimeout)
	assert.Equal(t, 4000, cfg.MaxTokensPerPackage)
	assert.Equal(t, core.StrategyMerge, cfg.DefaultStrategy)
	assert.Equal(t, 0.7, cfg.ConfidenceThreshold)
	assert.Equal(t, 3, cfg.MaxSpawnDepth)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvMaxConcurrentRequests, "5")
	t.Setenv(EnvDefaultTimeoutMinutes, "2")
	t.Setenv(EnvDefaultStrategy, "append")
	t.Setenv(EnvHTTPAddr, "127.0.0.1:9999")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.MaxConcurrentRequests)
	assert.Equal(t, 2*time.Minute, cfg.DefaultTimeout)
	assert.Equal(t, core.StrategyAppend, cfg.DefaultStrategy)
	assert.Equal(t, "127.0.0.1:9999", cfg.HTTPAddr)
}

func TestLoad_InvalidStrategy(t *testing.T) {
	t.Setenv(EnvDefaultStrategy, "overwrite_everything")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown integration strategy")
}

func TestLoad_InvalidNumbers(t *testing.T) {
	t.Setenv(EnvMaxConcurrentRequests, "many")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsZeroConcurrency(t *testing.T) {
	t.Setenv(EnvMaxConcurrentRequests, "0")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	_, err := Load("does-not-exist.env")
	assert.NoError(t, err)
}

func TestConfig_LifecycleMapping(t *testing.T) {
	t.Setenv(EnvMaxConcurrentRequests, "7")
	t.Setenv(EnvMaxSpawnDepth, "1")

	cfg, err := Load()
	require.NoError(t, err)

	lc := cfg.Lifecycle()
	assert.Equal(t, 7, lc.MaxConcurrentRequests)
	assert.Equal(t, 1, lc.MaxSpawnDepth)
	assert.Equal(t, core.StrategyMerge, lc.DefaultStrategy)
}
