// Package config provides configuration management for formstate hosts
// using Viper for loading from files, environment variables, and
// command-line flags.
//
// The configuration covers logging, CLI output, the initializer flush delay,
// the debounce of `formstate watch`, and a map of default error messages
// keyed by rule name. Environment variables use the FORMSTATE_ prefix.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	formerrors "github.com/conneroisu/formstate/internal/errors"
	"github.com/conneroisu/formstate/internal/initqueue"
	"github.com/conneroisu/formstate/internal/logging"
	"github.com/conneroisu/formstate/internal/validation"
)

// EnvPrefix is the prefix of environment overrides, e.g. FORMSTATE_LOG_LEVEL.
const EnvPrefix = "FORMSTATE"

type Config struct {
	Log      LogConfig         `mapstructure:"log" yaml:"log"`
	Output   OutputConfig      `mapstructure:"output" yaml:"output"`
	Init     InitConfig        `mapstructure:"init" yaml:"init"`
	Watch    WatchConfig       `mapstructure:"watch" yaml:"watch"`
	Messages map[string]string `mapstructure:"messages" yaml:"messages"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
}

type InitConfig struct {
	FlushDelay time.Duration `mapstructure:"flush_delay" yaml:"flush_delay"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// Defaults applied by Load for keys that are not set.
const (
	DefaultLogLevel      = "warn"
	DefaultLogFormat     = "text"
	DefaultOutputFormat  = "table"
	DefaultWatchDebounce = 50 * time.Millisecond
)

// Load reads the configuration from the global viper instance, applies
// defaults and validates the result.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, formerrors.WrapConfig(err, formerrors.ErrCodeConfigInvalid, "decoding configuration")
	}

	if config.Log.Level == "" {
		config.Log.Level = DefaultLogLevel
	}
	if config.Log.Format == "" {
		config.Log.Format = DefaultLogFormat
	}
	if config.Output.Format == "" {
		config.Output.Format = DefaultOutputFormat
	}
	if !viper.IsSet("watch.debounce") {
		config.Watch.Debounce = DefaultWatchDebounce
	}
	if config.Messages == nil {
		config.Messages = make(map[string]string)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoggerConfig converts the log section for logging.NewLogger.
func (c *Config) LoggerConfig() *logging.LoggerConfig {
	lc := logging.DefaultConfig()
	if level, err := logging.ParseLevel(c.Log.Level); err == nil {
		lc.Level = level
	}
	lc.Format = c.Log.Format
	return lc
}

// EnvKeyReplacer maps nested keys to environment names, log.level to
// FORMSTATE_LOG_LEVEL.
func EnvKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

// ErrorMessages returns the configured messages as a message map. Viper
// lowercases keys, so built-in rule names are restored to their canonical
// spelling.
func (c *Config) ErrorMessages() validation.Messages {
	if len(c.Messages) == 0 {
		return nil
	}
	out := make(validation.Messages, len(c.Messages))
	for rule, text := range c.Messages {
		out[canonicalRule(rule)] = validation.Text(text)
	}
	return out
}

func canonicalRule(rule string) string {
	for _, builtin := range []string{validation.RuleRequired, validation.RuleMinLength} {
		if strings.EqualFold(rule, builtin) {
			return builtin
		}
	}
	return rule
}

// Scheduler returns the initializer scheduler for the configured delay.
func (c *Config) Scheduler() initqueue.Scheduler {
	return initqueue.TimerScheduler{Delay: c.Init.FlushDelay}
}
