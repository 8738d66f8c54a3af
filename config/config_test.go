package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want Config
	}{
		{
			name: "defaults",
			env:  map[string]string{},
			want: Default(),
		},
		{
			name: "all set",
			env: map[string]string{
				"PORT":                "3000",
				"LOG_LEVEL":           "debug",
				"WS_SEND_BUFFER":      "32",
				"WS_MAX_MESSAGE_SIZE": "1024",
				"SHUTDOWN_TIMEOUT":    "2s",
			},
			want: Config{
				Port:            "3000",
				LogLevel:        "debug",
				SendBuffer:      32,
				MaxMessageSize:  1024,
				ShutdownTimeout: 2 * time.Second,
			},
		},
		{
			name: "invalid numbers fall back",
			env: map[string]string{
				"WS_SEND_BUFFER":      "lots",
				"WS_MAX_MESSAGE_SIZE": "-1",
				"SHUTDOWN_TIMEOUT":    "soon",
			},
			want: Default(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromEnv(envMap(tt.env)))
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("WS_SEND_BUFFER=64\n"), 0644))
	t.Setenv("WS_SEND_BUFFER", "")
	os.Unsetenv("WS_SEND_BUFFER")

	cfg := Load(path)

	assert.Equal(t, 64, cfg.SendBuffer)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NotZero(t, cfg.SendBuffer)
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, Config{LogLevel: in}.SlogLevel(), "level %q", in)
	}
}
