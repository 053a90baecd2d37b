package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Sim     SimConfig     `toml:"sim"`
	Pool    PoolConfig    `toml:"pool"`
	Player  PlayerConfig  `toml:"player"`
	Rewards RewardsConfig `toml:"rewards"`
	Data    DataConfig    `toml:"data"`
	Logging LoggingConfig `toml:"logging"`
}

type SimConfig struct {
	TickRate    time.Duration `toml:"tick_rate"`
	Realtime    bool          `toml:"realtime"`     // sleep on a ticker instead of fast-forwarding
	MaxDuration time.Duration `toml:"max_duration"` // simulated time limit
	Seed        int64         `toml:"seed"`         // 0 = seed from the clock
	Level       string        `toml:"level"`
}

type PoolConfig struct {
	ExpandThreshold     int `toml:"expand_threshold"`
	ExpandCount         int `toml:"expand_count"`
	EnemyStartCount     int `toml:"enemy_start_count"`
	PlaceableStartCount int `toml:"placeable_start_count"`
}

type PlayerConfig struct {
	Level      int `toml:"level"`
	Experience int `toml:"experience"`
}

type RewardsConfig struct {
	ExperienceFormula string `toml:"experience_formula"`
}

type DataConfig struct {
	Dir        string `toml:"dir"`
	ScriptsDir string `toml:"scripts_dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return defaults()
}

func (c *Config) validate() error {
	if c.Sim.TickRate <= 0 {
		return fmt.Errorf("sim.tick_rate must be positive, got %s", c.Sim.TickRate)
	}
	if c.Sim.Level == "" {
		return fmt.Errorf("sim.level is required")
	}
	if c.Pool.ExpandThreshold < 0 {
		return fmt.Errorf("pool.expand_threshold must not be negative, got %d", c.Pool.ExpandThreshold)
	}
	if c.Pool.ExpandCount < 1 {
		return fmt.Errorf("pool.expand_count must be at least 1, got %d", c.Pool.ExpandCount)
	}
	if c.Player.Level < 1 {
		return fmt.Errorf("player.level must be at least 1, got %d", c.Player.Level)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Sim: SimConfig{
			TickRate:    20 * time.Millisecond,
			Realtime:    false,
			MaxDuration: 10 * time.Minute,
			Level:       "meadow",
		},
		Pool: PoolConfig{
			ExpandThreshold:     2,
			ExpandCount:         5,
			EnemyStartCount:     10,
			PlaceableStartCount: 2,
		},
		Player: PlayerConfig{
			Level:      2,
			Experience: 1325,
		},
		Rewards: RewardsConfig{
			ExperienceFormula: "int(EnemyLevel / PlayerLevel) * BaseExperience",
		},
		Data: DataConfig{
			Dir:        "data/yaml",
			ScriptsDir: "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
