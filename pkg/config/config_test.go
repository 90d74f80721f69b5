package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cbodonnell/puzzleflow/pkg/game"
	"github.com/cbodonnell/puzzleflow/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "puzzleflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
data_url: memory://
report:
  server_url: https://reports.example.com
  transport: ws
  timeout: 3s
gameplay:
  free_lives: 5
  score:
    base: 2000
  time:
    hard:
      limit_seconds: 300
      warning_seconds: 30
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "memory://", cfg.DataURL)
	assert.Equal(t, "https://reports.example.com", cfg.Report.ServerURL)
	assert.Equal(t, TransportWebSocket, cfg.Report.Transport)
	assert.Equal(t, 3*time.Second, cfg.Report.Timeout)
	assert.Equal(t, 5, cfg.Gameplay.FreeLives)
	assert.Equal(t, 3, cfg.Gameplay.FreeHints)
	assert.Equal(t, 2000, cfg.Gameplay.Score.Base)
	assert.Equal(t, 50, cfg.Gameplay.Score.HintPenalty)
	assert.Equal(t, 100*time.Millisecond, cfg.Loop.TickInterval)

	timeConfigs, err := cfg.Gameplay.TimeConfigs()
	require.NoError(t, err)
	assert.Equal(t, game.TimeConfig{LimitSeconds: 300, WarningSeconds: 30}, timeConfigs[types.DifficultyHard])
	assert.Contains(t, timeConfigs, types.DifficultyEasy)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "data_url: memory://\n")
	t.Setenv("PUZZLEFLOW_REPORT_TOKEN", "secret")
	t.Setenv("PUZZLEFLOW_LOG_LEVEL", "trace")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Report.Token)
	assert.Equal(t, "trace", cfg.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(cfg *Config)
	}{
		{name: "log level", modify: func(cfg *Config) { cfg.LogLevel = "loud" }},
		{name: "data url scheme", modify: func(cfg *Config) { cfg.DataURL = "redis://localhost" }},
		{name: "transport", modify: func(cfg *Config) { cfg.Report.Transport = "udp" }},
		{name: "tick interval", modify: func(cfg *Config) { cfg.Loop.TickInterval = 0 }},
		{name: "free lives", modify: func(cfg *Config) { cfg.Gameplay.FreeLives = -1 }},
		{name: "difficulty", modify: func(cfg *Config) { cfg.Gameplay.Time["impossible"] = game.TimeConfig{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
