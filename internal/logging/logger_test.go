package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{
		Level:  LevelDebug,
		Format: "json",
		Output: &buf,
	})

	logger.WithComponent("registry").
		With("form_id", "abc").
		Warn(context.Background(), errors.New("dup"), "Duplicate registration", "name", "f1")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "Duplicate registration", record["msg"])
	assert.Equal(t, "registry", record["component"])
	assert.Equal(t, "dup", record["error"])
	assert.Equal(t, "abc", record["form_id"])
	assert.Equal(t, "f1", record["name"])
}

func TestFormLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelWarn, Output: &buf})
	ctx := context.Background()

	logger.Debug(ctx, "hidden debug")
	logger.Info(ctx, "hidden info")
	logger.Warn(ctx, nil, "shown warn")
	logger.Error(ctx, nil, "shown error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown warn")
	assert.Contains(t, out, "shown error")
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestWithDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&LoggerConfig{Level: LevelInfo, Format: "json", Output: &buf})

	_ = base.With("scoped", true)
	base.Info(context.Background(), "plain")

	assert.NotContains(t, buf.String(), "scoped")
}

func TestNop(t *testing.T) {
	logger := OrNop(nil)
	ctx := context.Background()

	assert.NotPanics(t, func() {
		logger.Debug(ctx, "x")
		logger.Info(ctx, "x")
		logger.Warn(ctx, nil, "x")
		logger.Error(ctx, nil, "x")
		logger.With("a", 1).WithComponent("c").Info(ctx, "x")
	})

	var buf bytes.Buffer
	real := NewLogger(&LoggerConfig{Output: &buf})
	assert.Same(t, real, OrNop(real))
}
