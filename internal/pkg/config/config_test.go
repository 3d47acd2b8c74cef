package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 150},
		DEM: DEMConfig{
			Endpoint:     "https://portal.opentopography.org/API/globaldem",
			Dataset:      "SRTMGL3",
			OutputFormat: "GTiff",
			OutputPath:   "raster.tif",
			Timeout:      120,
			MaxAreaKm2:   450000,
		},
		Session: SessionConfig{Store: "memory", TTL: 3600},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("demfetch-test")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "SRTMGL3", cfg.DEM.Dataset)
	assert.Equal(t, "GTiff", cfg.DEM.OutputFormat)
	assert.Equal(t, "https://portal.opentopography.org/API/globaldem", cfg.DEM.Endpoint)
	assert.True(t, strings.HasSuffix(cfg.DEM.OutputPath, "raster.tif"))
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, "demfetch-test", cfg.Telemetry.ServiceName)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DEMFETCH_DEM_OUTPUT_PATH", "/tmp/out.tif")
	t.Setenv("DEMFETCH_SERVER_PORT", "9090")

	cfg, err := Load("demfetch-test")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out.tif", cfg.DEM.OutputPath)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.DEM.Endpoint = "ftp://example.com"
	cfg.DEM.Timeout = 0
	cfg.Session.Store = "redis"

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "server.port")
	assert.Contains(t, msg, "dem.endpoint")
	assert.Contains(t, msg, "dem.timeout")
	assert.Contains(t, msg, "session.store")
}

func TestValidate_ValkeyNeedsAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Session.Store = "valkey"
	cfg.Valkey.Addr = ""
	assert.ErrorContains(t, cfg.Validate(), "valkey.addr")
}

func TestCredentials_ReadsEnvOnEveryCall(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	t.Setenv("DEMFETCH_API_KEY", "")
	creds := NewCredentials()
	assert.Equal(t, "", creds.APIKey())

	t.Setenv(APIKeyEnv, "  secret-key ")
	assert.Equal(t, "secret-key", creds.APIKey())
}

func TestCredentials_Fallback(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	t.Setenv("DEMFETCH_API_KEY", "fallback")
	assert.Equal(t, "fallback", NewCredentials().APIKey())
}
