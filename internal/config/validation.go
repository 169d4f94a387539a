package config

import (
	"fmt"
	"slices"
	"strings"

	formerrors "github.com/conneroisu/formstate/internal/errors"
	"github.com/conneroisu/formstate/internal/logging"
)

var (
	logFormats    = []string{"text", "json"}
	outputFormats = []string{"table", "json", "yaml"}
)

// validateConfig checks every section and returns the first problem as a
// config FormError.
func validateConfig(config *Config) error {
	if err := validateLogConfig(&config.Log); err != nil {
		return err
	}

	if !slices.Contains(outputFormats, config.Output.Format) {
		return invalid("output.format", config.Output.Format,
			fmt.Sprintf("must be one of %s", strings.Join(outputFormats, ", ")))
	}

	if config.Init.FlushDelay < 0 {
		return invalid("init.flush_delay", config.Init.FlushDelay, "must not be negative")
	}

	if config.Watch.Debounce < 0 {
		return invalid("watch.debounce", config.Watch.Debounce, "must not be negative")
	}

	for rule := range config.Messages {
		if strings.TrimSpace(rule) == "" {
			return invalid("messages", rule, "rule names must not be empty")
		}
	}

	return nil
}

func validateLogConfig(config *LogConfig) error {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		return invalid("log.level", config.Level, err.Error())
	}
	if !slices.Contains(logFormats, config.Format) {
		return invalid("log.format", config.Format,
			fmt.Sprintf("must be one of %s", strings.Join(logFormats, ", ")))
	}
	return nil
}

func invalid(key string, value interface{}, reason string) *formerrors.FormError {
	return formerrors.NewConfigError(formerrors.ErrCodeConfigInvalid,
		fmt.Sprintf("%s %v: %s", key, value, reason)).
		WithContext("key", key)
}
