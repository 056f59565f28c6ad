package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, "./data/fitcoach.db", cfg.DBPath)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model)
	assert.Equal(t, "fitcoach-mcp", cfg.MCPCommand)
	assert.Empty(t, cfg.MCPArgs)
	assert.Equal(t, "fitcoach", cfg.ServiceName)
	assert.Equal(t, int64(1024*1024), cfg.MaxRequestBodyBytes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FITCOACH_PORT", "9999")
	t.Setenv("FITCOACH_MODEL", "gemini-2.5-pro")
	t.Setenv("FITCOACH_MCP_COMMAND", "/opt/bin/tool-server")
	t.Setenv("FITCOACH_MCP_ARGS", "--verbose --cache /tmp/cache")
	t.Setenv("FITCOACH_READ_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model)
	assert.Equal(t, "/opt/bin/tool-server", cfg.MCPCommand)
	assert.Equal(t, []string{"--verbose", "--cache", "/tmp/cache"}, cfg.MCPArgs)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("FITCOACH_PORT", "not-a-number")
	t.Setenv("FITCOACH_READ_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Model = ""
	assert.Error(t, cfg.Validate())

	cfg, _ = Load()
	cfg.DBPath = ""
	assert.Error(t, cfg.Validate())

	cfg, _ = Load()
	cfg.MaxRequestBodyBytes = 0
	assert.Error(t, cfg.Validate())
}
