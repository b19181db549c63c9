package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/lucasjlepore/kaiord/zwo"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "KAIORD_CONFIG"

type Config struct {
	LogLevel string      `toml:"log_level"`
	LogJSON  bool        `toml:"log_json"`
	Zwift    ZwiftConfig `toml:"zwift"`
	Batch    BatchConfig `toml:"batch"`
}

type ZwiftConfig struct {
	RepetitionPolicy          string  `toml:"repetition_policy"` // drop, error or flatten
	Author                    string  `toml:"author"`
	ThresholdPaceSecondsPerKm float64 `toml:"threshold_pace_seconds_per_km"`
}

type BatchConfig struct {
	Workers int `toml:"workers"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		LogLevel: "info",
		Zwift:    ZwiftConfig{RepetitionPolicy: string(zwo.PolicyDrop)},
		Batch:    BatchConfig{Workers: 4},
	}
}

// GetConfigPath returns the config file path, honouring KAIORD_CONFIG.
func GetConfigPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "kaiord", "config.toml"), nil
}

// Load reads path, or the default location when path is empty. A missing
// file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if cfg.Batch.Workers <= 0 {
		cfg.Batch.Workers = Default().Batch.Workers
	}
	policy, err := zwo.ParseRepetitionPolicy(cfg.Zwift.RepetitionPolicy)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: zwift.repetition_policy: %w", path, err)
	}
	cfg.Zwift.RepetitionPolicy = string(policy)
	return cfg, nil
}
