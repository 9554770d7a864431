package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/TurbineJesse/go-cfa835/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    zapcore.Level
		wantErr bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"", zapcore.InfoLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"trace", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewConsoleAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfa835.log")
	var console bytes.Buffer

	logger, err := newLogger(config.LoggingConfig{
		Level:  "debug",
		Format: "json",
		File:   config.LumberjackConfig{Filename: path, MaxSizeMB: 1},
	}, &console)
	require.NoError(t, err)

	logger.Debug("exchange started", zap.String("op", "read_contrast"))
	require.NoError(t, logger.Sync())

	assert.Contains(t, console.String(), `"msg":"exchange started"`)
	assert.Contains(t, console.String(), `"op":"read_contrast"`)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "exchange started")
}

func TestNewFiltersByLevel(t *testing.T) {
	var console bytes.Buffer
	logger, err := newLogger(config.LoggingConfig{Level: "error", Format: "console"}, &console)
	require.NoError(t, err)

	logger.Info("quiet")
	logger.Error("loud")

	assert.NotContains(t, console.String(), "quiet")
	assert.Contains(t, console.String(), "loud")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "chatty"})
	assert.ErrorContains(t, err, "unknown log level")
}

func TestDisplayAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := Display(zap.New(core))

	l.Debug("sent request", "op", "read_backlights")
	l.Info("exchange recovered", "attempt", 2)
	l.Error("retries exhausted", "attempts", 3)

	require.Equal(t, 3, logs.Len())
	entries := logs.All()
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "read_backlights", entries[0].ContextMap()["op"])
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, int64(2), entries[1].ContextMap()["attempt"])
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}
