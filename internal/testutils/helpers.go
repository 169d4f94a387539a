package testutils

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/conneroisu/formstate/internal/config"
	"github.com/conneroisu/formstate/internal/logging"
	"github.com/stretchr/testify/require"
)

// CreateTempWorkspace creates a temporary directory with a forms/ and data/
// layout for CLI and watcher tests
func CreateTempWorkspace(t *testing.T) string {
	tempDir := t.TempDir()

	for _, dir := range []string{"forms", "data"} {
		err := os.MkdirAll(filepath.Join(tempDir, dir), 0755)
		require.NoError(t, err)
	}

	return tempDir
}

// WriteFile writes content to dir/name and returns the full path
func WriteFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// CreateTestConfig creates a configuration with the defaults Load applies
func CreateTestConfig() *config.Config {
	return &config.Config{
		Log: config.LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Output: config.OutputConfig{
			Format: "table",
		},
		Init: config.InitConfig{
			FlushDelay: 0,
		},
		Watch: config.WatchConfig{
			Debounce: 50 * time.Millisecond,
		},
		Messages: map[string]string{},
	}
}

// LogEntry is one record captured by RecordingLogger
type LogEntry struct {
	Level     logging.LogLevel
	Component string
	Message   string
	Err       error
	Fields    []interface{}
}

type logStore struct {
	mu      sync.Mutex
	entries []LogEntry
}

// RecordingLogger is a logging.Logger that keeps every record in memory
type RecordingLogger struct {
	store     *logStore
	component string
	fields    []interface{}
}

// NewRecordingLogger creates an empty recording logger
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{store: &logStore{}}
}

func (r *RecordingLogger) record(level logging.LogLevel, err error, msg string, fields []interface{}) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	all := append(append([]interface{}{}, r.fields...), fields...)
	r.store.entries = append(r.store.entries, LogEntry{
		Level:     level,
		Component: r.component,
		Message:   msg,
		Err:       err,
		Fields:    all,
	})
}

func (r *RecordingLogger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	r.record(logging.LevelDebug, nil, msg, fields)
}

func (r *RecordingLogger) Info(ctx context.Context, msg string, fields ...interface{}) {
	r.record(logging.LevelInfo, nil, msg, fields)
}

func (r *RecordingLogger) Warn(ctx context.Context, err error, msg string, fields ...interface{}) {
	r.record(logging.LevelWarn, err, msg, fields)
}

func (r *RecordingLogger) Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	r.record(logging.LevelError, err, msg, fields)
}

func (r *RecordingLogger) With(fields ...interface{}) logging.Logger {
	return &RecordingLogger{
		store:     r.store,
		component: r.component,
		fields:    append(append([]interface{}{}, r.fields...), fields...),
	}
}

func (r *RecordingLogger) WithComponent(component string) logging.Logger {
	return &RecordingLogger{store: r.store, component: component, fields: r.fields}
}

// Entries returns every captured record
func (r *RecordingLogger) Entries() []LogEntry {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]LogEntry, len(r.store.entries))
	copy(out, r.store.entries)
	return out
}

// Warnings returns the records logged at warn level
func (r *RecordingLogger) Warnings() []LogEntry {
	var warns []LogEntry
	for _, e := range r.Entries() {
		if e.Level == logging.LevelWarn {
			warns = append(warns, e)
		}
	}
	return warns
}
