package swctx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaultsWithoutEnv(t *testing.T) {
	t.Setenv("SW_STORAGE", "")
	t.Setenv("SW_REGISTRY_URL", "")
	t.Setenv("SW_NO_NETWORK", "")
	t.Setenv("SW_VERBOSE", "")
	t.Setenv("SW_TRACE", "")

	cfg := LoadConfig()
	assert.NotEmpty(t, cfg.StorageRoot)
	assert.False(t, cfg.NoNetwork)
	assert.False(t, cfg.Verbose)
	assert.False(t, cfg.Trace)
}

func TestLoadConfigReadsEnv(t *testing.T) {
	t.Setenv("SW_STORAGE", "/tmp/sw-root")
	t.Setenv("SW_REGISTRY_URL", "https://registry.example.test")
	t.Setenv("SW_NO_NETWORK", "true")
	t.Setenv("SW_VERBOSE", "1")
	t.Setenv("SW_TRACE", "1")
	t.Setenv("SW_WORKERS", "6")
	t.Setenv("SW_COMMAND_TIMEOUT_MS", "5000")
	t.Setenv("SW_MAX_ARGV_BYTES", "1024")

	cfg := LoadConfig()
	assert.Equal(t, "/tmp/sw-root", cfg.StorageRoot)
	assert.Equal(t, "https://registry.example.test", cfg.RegistryURL)
	assert.True(t, cfg.NoNetwork)
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.Trace)
	assert.Equal(t, 6, cfg.Workers)
	assert.Equal(t, 5000, cfg.CommandTimeoutMs)
	assert.Equal(t, 1024, cfg.MaxArgvBytes)
}
