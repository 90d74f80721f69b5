// Package config loads the puzzleflow configuration from a file, PUZZLEFLOW_* environment
// variables and defaults.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cbodonnell/puzzleflow/pkg/game"
	"github.com/cbodonnell/puzzleflow/pkg/game/types"
	"github.com/cbodonnell/puzzleflow/pkg/log"
	"github.com/spf13/viper"
)

const (
	TransportHTTP      = "http"
	TransportWebSocket = "ws"
)

type Config struct {
	LogLevel string `mapstructure:"log_level"`
	// DataURL selects the local store: memory://, sqlite://<path> or postgres://...
	DataURL string `mapstructure:"data_url"`
	// Levels is the path of the TOML level catalog.
	Levels   string         `mapstructure:"levels"`
	Report   ReportConfig   `mapstructure:"report"`
	Loop     LoopConfig     `mapstructure:"loop"`
	Gameplay GameplayConfig `mapstructure:"gameplay"`
}

type ReportConfig struct {
	ServerURL string        `mapstructure:"server_url"`
	Token     string        `mapstructure:"token"`
	Transport string        `mapstructure:"transport"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type LoopConfig struct {
	TickInterval  time.Duration `mapstructure:"tick_interval"`
	TaskQueueSize int           `mapstructure:"task_queue_size"`
}

type GameplayConfig struct {
	FreeLives int              `mapstructure:"free_lives"`
	FreeHints int              `mapstructure:"free_hints"`
	Score     game.ScoreConfig `mapstructure:"score"`
	// Time maps a difficulty name to its clock.
	Time map[string]game.TimeConfig `mapstructure:"time"`
}

// TimeConfigs returns the per-difficulty clocks keyed by parsed difficulty.
func (c GameplayConfig) TimeConfigs() (map[types.Difficulty]game.TimeConfig, error) {
	configs := make(map[types.Difficulty]game.TimeConfig, len(c.Time))
	for name, timeConfig := range c.Time {
		difficulty, err := types.ParseDifficulty(name)
		if err != nil {
			return nil, fmt.Errorf("invalid time config: %v", err)
		}
		configs[difficulty] = timeConfig
	}
	return configs, nil
}

func Default() *Config {
	return &Config{
		LogLevel: "info",
		DataURL:  "sqlite://" + defaultDataPath(),
		Levels:   "configs/levels.toml",
		Report: ReportConfig{
			ServerURL: "http://localhost:8080",
			Transport: TransportHTTP,
			Timeout:   10 * time.Second,
		},
		Loop: LoopConfig{
			TickInterval:  100 * time.Millisecond,
			TaskQueueSize: 1024,
		},
		Gameplay: GameplayConfig{
			FreeLives: 3,
			FreeHints: 3,
			Score: game.ScoreConfig{
				Base:           1000,
				HintPenalty:    50,
				MistakePenalty: 25,
				TimeBonus:      1,
			},
			Time: map[string]game.TimeConfig{
				"easy":   {},
				"medium": {},
				"hard":   {LimitSeconds: 900, WarningSeconds: 60},
				"expert": {LimitSeconds: 600, WarningSeconds: 60},
			},
		},
	}
}

func defaultDataPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "puzzleflow", "puzzleflow.db")
	}
	return "puzzleflow.db"
}

// Load reads the config file at path, or puzzleflow.yaml from the working or user
// config directory when path is empty. A missing default file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("puzzleflow")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "puzzleflow"))
		}
	}

	v.SetEnvPrefix("PUZZLEFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Default()
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("data_url", cfg.DataURL)
	v.SetDefault("levels", cfg.Levels)
	v.SetDefault("report.server_url", cfg.Report.ServerURL)
	v.SetDefault("report.token", cfg.Report.Token)
	v.SetDefault("report.transport", cfg.Report.Transport)
	v.SetDefault("report.timeout", cfg.Report.Timeout)
	v.SetDefault("loop.tick_interval", cfg.Loop.TickInterval)
	v.SetDefault("loop.task_queue_size", cfg.Loop.TaskQueueSize)
	v.SetDefault("gameplay.free_lives", cfg.Gameplay.FreeLives)
	v.SetDefault("gameplay.free_hints", cfg.Gameplay.FreeHints)
	v.SetDefault("gameplay.score.base", cfg.Gameplay.Score.Base)
	v.SetDefault("gameplay.score.hint_penalty", cfg.Gameplay.Score.HintPenalty)
	v.SetDefault("gameplay.score.mistake_penalty", cfg.Gameplay.Score.MistakePenalty)
	v.SetDefault("gameplay.score.time_bonus", cfg.Gameplay.Score.TimeBonus)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config: %v", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := log.ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %v", err)
	}

	u, err := url.Parse(c.DataURL)
	if err != nil {
		return fmt.Errorf("invalid data_url: %v", err)
	}
	switch u.Scheme {
	case "memory", "sqlite", "postgres", "postgresql":
	default:
		return fmt.Errorf("invalid data_url: unsupported scheme %q", u.Scheme)
	}

	switch c.Report.Transport {
	case TransportHTTP, TransportWebSocket:
	default:
		return fmt.Errorf("invalid report.transport: %q", c.Report.Transport)
	}
	if c.Report.Timeout < 0 {
		return fmt.Errorf("invalid report.timeout: %s", c.Report.Timeout)
	}
	if c.Loop.TickInterval <= 0 {
		return fmt.Errorf("invalid loop.tick_interval: %s", c.Loop.TickInterval)
	}

	if c.Gameplay.FreeLives < 0 || c.Gameplay.FreeHints < 0 {
		return fmt.Errorf("free lives and hints must not be negative")
	}
	if _, err := c.Gameplay.TimeConfigs(); err != nil {
		return err
	}

	return nil
}
