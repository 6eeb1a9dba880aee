package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigslides/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{name: "info level", cfg: &config.LoggingConfig{Level: "info"}},
		{name: "debug level", cfg: &config.LoggingConfig{Level: "debug"}},
		{name: "invalid level", cfg: &config.LoggingConfig{Level: "chatty"}, wantErr: true},
		{name: "file output", cfg: &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "run.log")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, lg)

			if tt.cfg.File != "" {
				lg.Info("hello file")
				data, err := os.ReadFile(tt.cfg.File)
				require.NoError(t, err)
				assert.Contains(t, string(data), "hello file")
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level   string
		want    zerolog.Level
		wantErr bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"loud", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			got, err := parseLogLevel(tt.level)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestStructuredOutput(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWithWriter(&buf, zerolog.DebugLevel)

	lg.WithField("region", "stkilda").
		WithError(errors.New("boom")).
		WarnWithFields("gig taller than slide", map[string]interface{}{
			"height": 980,
			"budget": 872,
		})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "gig taller than slide", entry["message"])
	assert.Equal(t, "stkilda", entry["region"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, float64(980), entry["height"])
	assert.Equal(t, "gigslides", entry["app"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWithWriter(&buf, zerolog.WarnLevel)

	lg.Debug("hidden")
	lg.Info("hidden")
	assert.Empty(t, buf.String())

	lg.Error("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestTestLogger(t *testing.T) {
	tl := NewTestLogger()
	child := tl.WithField("region", "fitzroy").WithError(errors.New("nope"))

	child.WarnWithFields("truncated", map[string]interface{}{"dropped_slides": 2})
	tl.Info("plain")

	msgs := tl.GetMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "WARN", msgs[0].Level)
	assert.Equal(t, "fitzroy", msgs[0].Fields["region"])
	assert.Equal(t, 2, msgs[0].Fields["dropped_slides"])
	assert.EqualError(t, msgs[0].Error, "nope")
	assert.True(t, tl.HasMessage("plain"))
	assert.False(t, tl.HasError())
	assert.Contains(t, tl.String(), "[WARN] truncated")

	tl.Clear()
	assert.Empty(t, tl.GetMessages())
}
