// Package config handles application configuration.
package config

import (
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/polyreg/linear"
	"github.com/YuminosukeSato/polyreg/pkg/errors"
	"github.com/YuminosukeSato/polyreg/pkg/log"
)

// Environment variables read by Load.
const (
	EnvConfigPath       = "POLYREG_CONFIG"
	EnvDataPath         = "POLYREG_DATA"
	EnvTestPath         = "POLYREG_TEST"
	EnvParametersPath   = "POLYREG_PARAMETERS"
	EnvPlotPath         = "POLYREG_PLOT"
	EnvRegularization   = "POLYREG_REGULARIZATION"
	EnvProgressInterval = "POLYREG_PROGRESS_INTERVAL"
	EnvUpdateRule       = "POLYREG_UPDATE_RULE"
	EnvLogLevel         = "LOG_LEVEL"
)

// Config holds the settings of the polyreg command.
type Config struct {
	DataPath       string `yaml:"data_path"`
	TestPath       string `yaml:"test_path"`
	ParametersPath string `yaml:"parameters_path"`
	// PlotPath is where the cost curve PNG goes. Empty disables the plot.
	PlotPath string `yaml:"plot_path"`

	Regularization   float64    `yaml:"regularization"`
	ProgressInterval int        `yaml:"progress_interval"`
	UpdateRule       UpdateRule `yaml:"update_rule"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the settings used when neither a file nor the environment
// says otherwise.
func Default() *Config {
	return &Config{
		DataPath:         "data.txt",
		TestPath:         "test.txt",
		ParametersPath:   "parameters.txt",
		ProgressInterval: linear.DefaultProgressInterval,
		UpdateRule:       UpdateRule(linear.UpdateSimultaneous),
		LogLevel:         "info",
	}
}

// LoadDotEnv loads variables from the given .env files (".env" when none are
// given) without overriding variables already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return errors.Wrapf(err, "config: load %s", p)
		}
	}
	return nil
}

// Load reads the YAML file at configPath on top of Default, then applies
// environment overrides. An empty configPath skips the file.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, errors.Wrapf(err, "config: read %s", configPath)
		}
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, errors.Wrapf(err, "config: parse %s", configPath)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvDataPath); v != "" {
		c.DataPath = v
	}
	if v := os.Getenv(EnvTestPath); v != "" {
		c.TestPath = v
	}
	if v := os.Getenv(EnvParametersPath); v != "" {
		c.ParametersPath = v
	}
	if v := os.Getenv(EnvPlotPath); v != "" {
		c.PlotPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvRegularization); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.NewValidationError(EnvRegularization, "not a number", v)
		}
		c.Regularization = f
	}
	if v := os.Getenv(EnvProgressInterval); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.NewValidationError(EnvProgressInterval, "not an integer", v)
		}
		c.ProgressInterval = n
	}
	if v := os.Getenv(EnvUpdateRule); v != "" {
		rule, err := linear.ParseUpdateRule(v)
		if err != nil {
			return err
		}
		c.UpdateRule = UpdateRule(rule)
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.DataPath == "" {
		return errors.NewValidationError("data_path", "must not be empty", c.DataPath)
	}
	if c.ParametersPath == "" {
		return errors.NewValidationError("parameters_path", "must not be empty", c.ParametersPath)
	}
	if !errors.IsFinite(c.Regularization) || c.Regularization < 0 {
		return errors.NewValidationError("regularization", "must be a finite value >= 0", c.Regularization)
	}
	if c.ProgressInterval < 1 {
		return errors.NewValidationError("progress_interval", "must be at least 1", c.ProgressInterval)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ModelOptions returns the linear options the configuration selects.
func (c *Config) ModelOptions() []linear.Option {
	return []linear.Option{
		linear.WithUpdateRule(linear.UpdateRule(c.UpdateRule)),
		linear.WithProgressInterval(c.ProgressInterval),
	}
}
