package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tvgate")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("PORT", "")
	t.Setenv("ALLOWED_EMAIL_DOMAINS", "")
	t.Setenv("ADMIN_MAX_PAGE_SIZE", "")
	t.Setenv("FETCHER_TIMEOUT", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 100, cfg.MaxPageSize)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, DefaultEmailDomains, cfg.AllowedEmailDomains)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tvgate")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("PORT", "8081")
	t.Setenv("ALLOWED_EMAIL_DOMAINS", " Example.com, corp.io ,")
	t.Setenv("ADMIN_MAX_PAGE_SIZE", "25")
	t.Setenv("FETCHER_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8081", cfg.ServerPort)
	assert.Equal(t, []string{"example.com", "corp.io"}, cfg.AllowedEmailDomains)
	assert.Equal(t, 25, cfg.MaxPageSize)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tvgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database_url: postgres://db/tvgate
redis_url: redis://cache:6379/0
server_port: "9000"
timeout: 10s
allowed_email_domains: [gmail.com]
`), 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://db/tvgate", cfg.DatabaseURL)
	assert.Equal(t, "redis://cache:6379/0", cfg.RedisURL)
	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"gmail.com"}, cfg.AllowedEmailDomains)
	assert.Equal(t, 100, cfg.MaxPageSize)
}

func TestLoadFromFileRequiresDatabaseURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tvgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_port: \"9000\"\n"), 0o600))

	_, err := LoadFromFile(path)
	assert.ErrorIs(t, err, ErrMissingDatabaseURL)
}

func TestParseEnvLine(t *testing.T) {
	tests := []struct {
		line  string
		key   string
		value string
		ok    bool
	}{
		{line: "DATABASE_URL=postgres://x", key: "DATABASE_URL", value: "postgres://x", ok: true},
		{line: `export REDIS_URL="redis://y"`, key: "REDIS_URL", value: "redis://y", ok: true},
		{line: "# comment", ok: false},
		{line: "   ", ok: false},
		{line: "=value", ok: false},
		{line: "NOVALUE", ok: false},
	}
	for _, tt := range tests {
		key, value, ok := parseEnvLine(tt.line)
		assert.Equal(t, tt.ok, ok, tt.line)
		if tt.ok {
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.value, value)
		}
	}
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := &Config{LogLevel: level}
		log, err := cfg.NewLogger()
		require.NoError(t, err, level)
		assert.True(t, log.Core().Enabled(zapcore.ErrorLevel))
	}

	debug, err := (&Config{LogLevel: "debug"}).NewLogger()
	require.NoError(t, err)
	assert.True(t, debug.Core().Enabled(zapcore.DebugLevel))

	info, err := (&Config{LogLevel: "info"}).NewLogger()
	require.NoError(t, err)
	assert.False(t, info.Core().Enabled(zapcore.DebugLevel))

	_, err = (&Config{LogLevel: "chatty"}).NewLogger()
	assert.Error(t, err)
}
