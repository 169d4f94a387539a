package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	formerrors "github.com/conneroisu/formstate/internal/errors"
	"github.com/conneroisu/formstate/internal/initqueue"
	"github.com/conneroisu/formstate/internal/logging"
	"github.com/conneroisu/formstate/internal/validation"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setup       func()
		expectError bool
		check       func(t *testing.T, c *Config)
	}{
		{
			name:  "defaults",
			setup: func() {},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "warn", c.Log.Level)
				assert.Equal(t, "text", c.Log.Format)
				assert.Equal(t, "table", c.Output.Format)
				assert.Equal(t, time.Duration(0), c.Init.FlushDelay)
				assert.Equal(t, 50*time.Millisecond, c.Watch.Debounce)
				assert.NotNil(t, c.Messages)
			},
		},
		{
			name: "explicit values",
			setup: func() {
				viper.Set("log.level", "debug")
				viper.Set("log.format", "json")
				viper.Set("output.format", "yaml")
				viper.Set("init.flush_delay", "5ms")
				viper.Set("watch.debounce", "0s")
				viper.Set("messages", map[string]any{"required": "is required"})
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "debug", c.Log.Level)
				assert.Equal(t, "json", c.Log.Format)
				assert.Equal(t, "yaml", c.Output.Format)
				assert.Equal(t, 5*time.Millisecond, c.Init.FlushDelay)
				assert.Equal(t, time.Duration(0), c.Watch.Debounce, "an explicit zero debounce is kept")
				assert.Equal(t, map[string]string{"required": "is required"}, c.Messages)
			},
		},
		{
			name:        "unknown log level",
			setup:       func() { viper.Set("log.level", "loud") },
			expectError: true,
		},
		{
			name:        "unknown output format",
			setup:       func() { viper.Set("output.format", "xml") },
			expectError: true,
		},
		{
			name:        "negative flush delay",
			setup:       func() { viper.Set("init.flush_delay", "-1s") },
			expectError: true,
		},
		{
			name:        "undecodable duration",
			setup:       func() { viper.Set("watch.debounce", "soon") },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			tt.setup()

			config, err := Load()

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, config)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, config)
			tt.check(t, config)
		})
	}
}

func TestLoad_FromFileAndEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	path := filepath.Join(dir, ".formstate.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: error
output:
  format: json
messages:
  minLength: too short
`), 0644))

	t.Setenv("FORMSTATE_OUTPUT_FORMAT", "yaml")

	viper.SetConfigFile(path)
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(EnvKeyReplacer())
	require.NoError(t, viper.ReadInConfig())

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "error", config.Log.Level)
	assert.Equal(t, "yaml", config.Output.Format, "environment overrides the file")
	assert.Equal(t, map[string]string{"minlength": "too short"}, config.Messages)

	msg, ok := config.ErrorMessages().Lookup(validation.RuleMinLength)
	require.True(t, ok)
	assert.Equal(t, "too short", msg.Format(nil))
}

func TestValidateConfig_ErrorType(t *testing.T) {
	config := &Config{
		Log:    LogConfig{Level: "info", Format: "xml"},
		Output: OutputConfig{Format: "table"},
	}

	err := validateConfig(config)
	require.Error(t, err)

	var fe *formerrors.FormError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, formerrors.ErrorTypeConfig, fe.Type)
	assert.Equal(t, formerrors.ErrCodeConfigInvalid, fe.Code)
	assert.Equal(t, "log.format", fe.Context["key"])
}

func TestValidateConfig_EmptyMessageRule(t *testing.T) {
	config := &Config{
		Log:      LogConfig{Level: "info", Format: "text"},
		Output:   OutputConfig{Format: "table"},
		Messages: map[string]string{" ": "blank"},
	}
	assert.Error(t, validateConfig(config))
}

func TestConfig_Conversions(t *testing.T) {
	config := &Config{
		Log:      LogConfig{Level: "debug", Format: "json"},
		Init:     InitConfig{FlushDelay: 10 * time.Millisecond},
		Messages: map[string]string{"required": "needed"},
	}

	lc := config.LoggerConfig()
	assert.Equal(t, logging.LevelDebug, lc.Level)
	assert.Equal(t, "json", lc.Format)

	msgs := config.ErrorMessages()
	msg, ok := msgs.Lookup("required")
	require.True(t, ok)
	assert.Equal(t, "needed", msg.Format(nil))
	assert.Equal(t, "needed", validation.Resolve(&validation.Result{Rule: "required"}, validation.MessageChain{msgs}))

	assert.Equal(t, initqueue.TimerScheduler{Delay: 10 * time.Millisecond}, config.Scheduler())

	assert.Nil(t, (&Config{}).ErrorMessages())
}
