package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/cardhub-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWithWriter(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		debugShown bool
		wantErr    bool
	}{
		{name: "debug", level: "debug", debugShown: true},
		{name: "info uppercase", level: "INFO"},
		{name: "warn", level: "warn"},
		{name: "invalid", level: "chatty", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			prev := slog.Default()
			t.Cleanup(func() { slog.SetDefault(prev) })

			l, err := SetupWithWriter(config.ServerConfig{Port: 8080, LogLevel: tt.level}, &buf)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, l)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, l)

			l.Debug("debug message")
			assert.Equal(t, tt.debugShown, strings.Contains(buf.String(), "debug message"))
		})
	}
}

func TestSetupWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	l, err := SetupWithWriter(config.ServerConfig{Port: 8080, LogLevel: "info"}, &buf)
	require.NoError(t, err)

	l.Info("hello", slog.String("component", "test"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	fallback := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	scoped := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	assert.Same(t, scoped, FromContextOrDefault(WithLogger(context.Background(), scoped), fallback))
	assert.NotNil(t, FromContextOrDefault(context.Background(), nil))
	assert.NotNil(t, FromContext(context.Background()))
}
