package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Contains(t, cfg.Server.AllowedOrigins, "https://preview.flutterflow.io")
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "data/boundaries", cfg.Boundary.DataDir)
	assert.Equal(t, "layers.yaml", cfg.Boundary.Manifest)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, int64(50<<20), cfg.Server.MaxUploadBytes)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("KMZUTM_SERVER_PORT", "9090")
	t.Setenv("KMZUTM_BOUNDARY_DATA_DIR", "/srv/boundaries")
	t.Setenv("KMZUTM_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/srv/boundaries", cfg.Boundary.DataDir)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
