// Package config loads uiarec settings from YAML with environment variable
// expansion.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/uiarec/internal/recorder"
)

// EnvConfigFile names the environment variable that points at a config file.
const EnvConfigFile = "UIAREC_CONFIG"

// DefaultFile is read when no path is given and it exists.
const DefaultFile = "uiarec.yaml"

// Config is the application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Recorder RecorderConfig `yaml:"recorder"`
	Runner   RunnerConfig   `yaml:"runner"`
	History  HistoryConfig  `yaml:"history"`
	API      APIConfig      `yaml:"api"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := c.Recorder.Validate(); err != nil {
		return fmt.Errorf("recorder: %w", err)
	}
	if err := c.Runner.Validate(); err != nil {
		return fmt.Errorf("runner: %w", err)
	}
	if err := c.History.Validate(); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Validate validates the logging configuration.
func (c *LogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.Format, validation.In("json", "console", "text")),
	)
}

// RecorderConfig tunes element scanning and input debouncing.
type RecorderConfig struct {
	ScanInterval      time.Duration `yaml:"scan_interval"`
	StableTicks       int           `yaml:"stable_ticks"`
	JoinTimeout       time.Duration `yaml:"join_timeout"`
	DoubleClickWindow time.Duration `yaml:"double_click_window"`
	CommitKey         string        `yaml:"commit_key"`
}

// Validate validates the recorder configuration.
func (c *RecorderConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ScanInterval, validation.Required, validation.Min(10*time.Millisecond)),
		validation.Field(&c.StableTicks, validation.Required, validation.Min(1)),
		validation.Field(&c.JoinTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.DoubleClickWindow, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.CommitKey, validation.Required, validation.In(
			"lshift", "rshift", "lcontrol", "rcontrol", "lmenu", "rmenu", "lwin", "rwin")),
	)
}

// Recorder converts the settings to the recorder's own type.
func (c RecorderConfig) Recorder() recorder.Config {
	return recorder.Config{
		ScanInterval:      c.ScanInterval,
		StableTicks:       c.StableTicks,
		JoinTimeout:       c.JoinTimeout,
		DoubleClickWindow: c.DoubleClickWindow,
		CommitKey:         c.CommitKey,
	}
}

// RunnerConfig controls script execution.
type RunnerConfig struct {
	// Interpreter is the Python executable with pywinauto installed.
	Interpreter string        `yaml:"interpreter"`
	Timeout     time.Duration `yaml:"timeout"`
	// WorkDir receives compiled scripts. Empty means the system temp dir.
	WorkDir string `yaml:"work_dir"`
	// Debug compiles run scripts with fault correlation.
	Debug bool `yaml:"debug"`
}

// Validate validates the runner configuration.
func (c *RunnerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Interpreter, validation.Required),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Second)),
	)
}

// HistoryConfig locates the run history database.
type HistoryConfig struct {
	// Path is the SQLite file. Empty disables history.
	Path string `yaml:"path"`
}

// Validate validates the history configuration.
func (c *HistoryConfig) Validate() error {
	return nil
}

// Enabled reports whether runs are recorded.
func (c *HistoryConfig) Enabled() bool {
	return c.Path != ""
}

// APIConfig holds the HTTP API settings.
type APIConfig struct {
	Port int `yaml:"port"`
	// Token, when set, is required as a Bearer token on every API request.
	Token string `yaml:"token"`
}

// Address returns the HTTP listen address.
func (c *APIConfig) Address() string {
	return fmt.Sprintf("127.0.0.1:%d", c.Port)
}

// Validate validates the API configuration.
func (c *APIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// NewDefaultConfig returns a Config with the stock settings.
func NewDefaultConfig() *Config {
	rec := recorder.DefaultConfig()
	return &Config{
		Log: LogConfig{Level: "info", Format: "console"},
		Recorder: RecorderConfig{
			ScanInterval:      rec.ScanInterval,
			StableTicks:       rec.StableTicks,
			JoinTimeout:       rec.JoinTimeout,
			DoubleClickWindow: rec.DoubleClickWindow,
			CommitKey:         rec.CommitKey,
		},
		Runner: RunnerConfig{
			Interpreter: "python",
			Timeout:     10 * time.Minute,
			Debug:       true,
		},
		History: HistoryConfig{Path: "uiarec-history.db"},
		API:     APIConfig{Port: 8765},
	}
}

// Load reads filename over the defaults. Environment variables in the file
// are expanded before parsing.
func Load(filename string) (*Config, error) {
	cfg := NewDefaultConfig()
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	normalize(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Resolve picks the config source: an explicit path must exist; otherwise
// $UIAREC_CONFIG, then DefaultFile if present, then built-in defaults.
func Resolve(explicit string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	if env := os.Getenv(EnvConfigFile); env != "" {
		return Load(env)
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return Load(DefaultFile)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", DefaultFile, err)
	}
	cfg := NewDefaultConfig()
	return cfg, cfg.Validate()
}

func normalize(c *Config) {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "warning" {
		c.Log.Level = "warn"
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Recorder.CommitKey = strings.ToLower(strings.TrimSpace(c.Recorder.CommitKey))
}
