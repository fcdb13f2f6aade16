package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "localhost:3000", cfg.Address)
	assert.Equal(t, DefaultMainHub, cfg.MainHub)
	assert.Empty(t, cfg.Hubs)
	assert.Empty(t, cfg.InitState)
	assert.False(t, cfg.Verbose)
	assert.Zero(t, cfg.Seed)
}

func TestLoad_Flags(t *testing.T) {
	cfg, err := Load([]string{
		"--port", "4000",
		"--main-hub", "github",
		"--hubs", "enterprise,staging",
		"-i", "seed.db",
		"-v",
		"--seed", "42",
	})
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "localhost:4000", cfg.Address)
	assert.Equal(t, "github", cfg.MainHub)
	assert.Equal(t, []string{"enterprise", "staging"}, cfg.Hubs)
	assert.Equal(t, "seed.db", cfg.InitState)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, uint64(42), cfg.Seed)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("FAKEHUB_PORT", "5000")
	t.Setenv("FAKEHUB_ADDRESS", "http://fake:5000")
	t.Setenv("FAKEHUB_INIT_STATE", "/tmp/init.db")
	t.Setenv("FAKEHUB_HUBS", "a b")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "http://fake:5000", cfg.Address)
	assert.Equal(t, "/tmp/init.db", cfg.InitState)
	assert.Equal(t, []string{"a", "b"}, cfg.Hubs)
}

func TestLoad_FlagBeatsEnv(t *testing.T) {
	t.Setenv("FAKEHUB_PORT", "5000")

	cfg, err := Load([]string{"--port", "6000"})
	require.NoError(t, err)
	assert.Equal(t, 6000, cfg.Port)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fakehub.toml")
	require.NoError(t, os.WriteFile(path, []byte("port = 7000\nmain-hub = \"octo\"\n"), 0o600))

	cfg, err := Load([]string{"--config", path})
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "octo", cfg.MainHub)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--nope"}},
		{"port too high", []string{"--port", "70000"}},
		{"port zero", []string{"--port", "0"}},
		{"empty main hub", []string{"--main-hub", " "}},
		{"duplicate hub", []string{"--hubs", "main"}},
		{"missing config file", []string{"--config", "/does/not/exist.toml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args)
			assert.Error(t, err)
		})
	}
}
