package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logpkg "github.com/maxviazov/forum-service/internal/logger"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		config      *logpkg.LoggerConfig
		expectError bool
		wantLevel   zerolog.Level
	}{
		{
			name: "production defaults",
			config: &logpkg.LoggerConfig{
				ServiceName: "forum-service",
				Env:         "prod",
				Fields:      map[string]interface{}{"key": "value"},
			},
			wantLevel: zerolog.InfoLevel,
		},
		{
			name:        "wrong env",
			config:      &logpkg.LoggerConfig{Env: "wrong-env", Level: "debug"},
			expectError: true,
		},
		{
			name:        "unknown level",
			config:      &logpkg.LoggerConfig{Env: "prod", Level: "loud"},
			expectError: true,
		},
		{
			name:        "unknown time format",
			config:      &logpkg.LoggerConfig{Env: "prod", TimeFormat: "iso"},
			expectError: true,
		},
		{
			name: "staging warn with unix time",
			config: &logpkg.LoggerConfig{
				Env:        "staging",
				Level:      "warn",
				TimeField:  "time",
				TimeFormat: "unix",
				Stacktrace: true,
			},
			wantLevel: zerolog.WarnLevel,
		},
		{
			name: "dev info without debug file",
			config: &logpkg.LoggerConfig{
				Env:   "dev",
				Level: "info",
			},
			wantLevel: zerolog.InfoLevel,
		},
		{
			name: "prod error with caller",
			config: &logpkg.LoggerConfig{
				Env:        "prod",
				Level:      "error",
				WithCaller: true,
			},
			wantLevel: zerolog.ErrorLevel,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := logpkg.New(test.config)
			if test.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.wantLevel, zerolog.GlobalLevel())
		})
	}
}

func TestNew_AppliesDefaults(t *testing.T) {
	cfg := &logpkg.LoggerConfig{Env: "dev", DebugFile: filepath.Join(t.TempDir(), "debug.log")}
	_, err := logpkg.New(cfg)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "stdout", cfg.OutputTarget)
	assert.Equal(t, "ts", cfg.TimeField)
	assert.Equal(t, "rfc3339nano", cfg.TimeFormat)
	assert.Equal(t, "forum-service", cfg.ServiceName)
	assert.True(t, cfg.WithCaller)
	assert.False(t, cfg.Stacktrace)
}

func TestNew_DevDebugMirrorsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")
	l, err := logpkg.New(&logpkg.LoggerConfig{
		ServiceName: "integration-test",
		Env:         "dev",
		Level:       "debug",
		DebugFile:   path,
	})
	require.NoError(t, err)
	l.Debug().Msg("hello file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}
