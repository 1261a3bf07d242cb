// Package config loads the simulator's run parameters - core and task
// limits, the LPD and shutdown thresholds, time granularity and base
// operating frequency - from compiled-in defaults, overridden by an
// optional YAML file, whose keys can in turn be overridden by
// MCSIM_-prefixed environment variables.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds every tunable the offline partitioner and the runtime
// scheduler loop read from.
type Config struct {
	MaxCores               int     `yaml:"max_cores" mapstructure:"max_cores"`
	MaxTasks               int     `yaml:"max_tasks" mapstructure:"max_tasks"`
	MaxLevels              int     `yaml:"max_levels" mapstructure:"max_levels"`
	LPDThreshold           float64 `yaml:"lpd_threshold" mapstructure:"lpd_threshold"`
	ShutdownThreshold      float64 `yaml:"shutdown_threshold" mapstructure:"shutdown_threshold"`
	TimeGranularity        float64 `yaml:"time_granularity" mapstructure:"time_granularity"`
	BaseOperatingFrequency float64 `yaml:"base_operating_frequency" mapstructure:"base_operating_frequency"`

	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig controls the zerolog sink.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// MetricsConfig controls the end-of-run Prometheus dump.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	DumpTo  string `yaml:"dump_to" mapstructure:"dump_to"` // path, or "-" for stdout
}

// Default returns the simulator's compiled-in defaults, matching the
// original reference implementation's header constants.
func Default() *Config {
	return &Config{
		MaxCores:               20,
		MaxTasks:               20,
		MaxLevels:              5,
		LPDThreshold:           10,
		ShutdownThreshold:      10,
		TimeGranularity:        0.01,
		BaseOperatingFrequency: 1.0,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			DumpTo:  "-",
		},
	}
}

// Load reads configFile (if non-empty) over the compiled-in defaults,
// then applies MCSIM_-prefixed environment variable overrides to the
// keys that file sets; with no file, the environment is not consulted.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", configFile, err)
		}
	}

	v.SetEnvPrefix("MCSIM")
	v.AutomaticEnv()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the rest of the simulator cannot
// reasonably run with.
func (c *Config) Validate() error {
	switch {
	case c.MaxCores <= 0:
		return fmt.Errorf("max_cores must be positive, got %d", c.MaxCores)
	case c.MaxTasks <= 0:
		return fmt.Errorf("max_tasks must be positive, got %d", c.MaxTasks)
	case c.MaxLevels <= 0:
		return fmt.Errorf("max_levels must be positive, got %d", c.MaxLevels)
	case c.TimeGranularity <= 0:
		return fmt.Errorf("time_granularity must be positive, got %f", c.TimeGranularity)
	case c.BaseOperatingFrequency <= 0:
		return fmt.Errorf("base_operating_frequency must be positive, got %f", c.BaseOperatingFrequency)
	}
	return nil
}
