package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trapline.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[sim]
tick_rate = "50ms"
seed = 42
level = "gorge"

[logging]
level = "debug"
`))
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, cfg.Sim.TickRate)
	assert.Equal(t, int64(42), cfg.Sim.Seed)
	assert.Equal(t, "gorge", cfg.Sim.Level)
	assert.Equal(t, 10*time.Minute, cfg.Sim.MaxDuration)
	assert.Equal(t, 2, cfg.Pool.ExpandThreshold)
	assert.Equal(t, 5, cfg.Pool.ExpandCount)
	assert.Equal(t, 1325, cfg.Player.Experience)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadShippedConfig(t *testing.T) {
	cfg, err := Load("../../config/trapline.toml")
	require.NoError(t, err)
	assert.Equal(t, *Default(), *cfg)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"tick rate", "[sim]\ntick_rate = \"0s\"", "sim.tick_rate"},
		{"level", "[sim]\nlevel = \"\"", "sim.level"},
		{"expand count", "[pool]\nexpand_count = 0", "pool.expand_count"},
		{"threshold", "[pool]\nexpand_threshold = -1", "pool.expand_threshold"},
		{"player level", "[player]\nlevel = 0", "player.level"},
		{"syntax", "[sim", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}
