package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "debug"
log_json = true

[zwift]
repetition_policy = "flatten"
author = "coach"
threshold_pace_seconds_per_km = 240

[batch]
workers = 8
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogJSON)
	assert.Equal(t, "flatten", cfg.Zwift.RepetitionPolicy)
	assert.Equal(t, "coach", cfg.Zwift.Author)
	assert.Equal(t, 240.0, cfg.Zwift.ThresholdPaceSecondsPerKm)
	assert.Equal(t, 8, cfg.Batch.Workers)
}

func TestLoadRejectsUnknownPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[zwift]\nrepetition_policy = \"explode\"\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "explode")
}

func TestGetConfigPathHonoursEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/kaiord.toml")
	p, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/kaiord.toml", p)
}
