package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("COMMAND_PREFIX", "")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("WEB_PORT", "")
	t.Setenv("SUPPRESSION_WINDOW", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.DiscordToken)
	assert.Equal(t, "!", cfg.CommandPrefix)
	assert.Equal(t, StorageBackendFile, cfg.StorageBackend)
	assert.Equal(t, 3000, cfg.WebPort)
	assert.True(t, cfg.PanelEnabled())
	assert.Equal(t, time.Second, cfg.SuppressionWindow)
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing token",
			env:     map[string]string{"DISCORD_TOKEN": ""},
			wantErr: "DISCORD_TOKEN is required",
		},
		{
			name:    "multi character prefix",
			env:     map[string]string{"DISCORD_TOKEN": "t", "COMMAND_PREFIX": "!!"},
			wantErr: "COMMAND_PREFIX",
		},
		{
			name:    "unknown backend",
			env:     map[string]string{"DISCORD_TOKEN": "t", "STORAGE_BACKEND": "redis"},
			wantErr: "unknown STORAGE_BACKEND",
		},
		{
			name:    "postgres without url",
			env:     map[string]string{"DISCORD_TOKEN": "t", "STORAGE_BACKEND": "postgres", "DATABASE_URL": ""},
			wantErr: "DATABASE_URL is required",
		},
		{
			name: "postgres without database name",
			env: map[string]string{
				"DISCORD_TOKEN":   "t",
				"STORAGE_BACKEND": "postgres",
				"DATABASE_URL":    "postgres://localhost:5432",
				"DATABASE_NAME":   "",
			},
			wantErr: "DATABASE_NAME is required",
		},
		{
			name:    "bad suppression window",
			env:     map[string]string{"DISCORD_TOKEN": "t", "SUPPRESSION_WINDOW": "soon"},
			wantErr: "SUPPRESSION_WINDOW",
		},
		{
			name:    "negative port",
			env:     map[string]string{"DISCORD_TOKEN": "t", "WEB_PORT": "-1"},
			wantErr: "WEB_PORT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENVIRONMENT", "production")
			t.Setenv("COMMAND_PREFIX", "")
			t.Setenv("STORAGE_BACKEND", "")
			t.Setenv("SUPPRESSION_WINDOW", "")
			t.Setenv("WEB_PORT", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DISCORD_TOKEN", "t")
	t.Setenv("COMMAND_PREFIX", "?")
	t.Setenv("STORAGE_BACKEND", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432")
	t.Setenv("DATABASE_NAME", "guildkeeper")
	t.Setenv("WEB_PORT", "0")
	t.Setenv("SUPPRESSION_WINDOW", "1500ms")
	t.Setenv("NATS_SERVERS", "nats://localhost:4222")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "?", cfg.CommandPrefix)
	assert.Equal(t, StorageBackendPostgres, cfg.StorageBackend)
	assert.False(t, cfg.PanelEnabled())
	assert.True(t, cfg.NATSEnabled())
	assert.Equal(t, 1500*time.Millisecond, cfg.SuppressionWindow)
	assert.Equal(t, "postgres://u:p@localhost:5432/guildkeeper?sslmode=disable", cfg.GetDatabaseURL())
}

func TestGet_UsesTestConfig(t *testing.T) {
	defer ResetConfig()

	testCfg := NewTestConfig()
	testCfg.CommandPrefix = "$"
	SetTestConfig(testCfg)

	assert.Same(t, testCfg, Get())
}

func TestGet_LoadsOnce(t *testing.T) {
	ResetConfig()
	defer ResetConfig()

	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DISCORD_TOKEN", "first-token")
	t.Setenv("COMMAND_PREFIX", "?")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("WEB_PORT", "")
	t.Setenv("SUPPRESSION_WINDOW", "")

	cfg := Get()
	require.NotNil(t, cfg)
	assert.Equal(t, "first-token", cfg.DiscordToken)
	assert.Equal(t, "?", cfg.CommandPrefix)

	t.Setenv("DISCORD_TOKEN", "second-token")
	assert.Same(t, cfg, Get())
}

func TestGet_PanicsOnInvalidConfig(t *testing.T) {
	ResetConfig()
	defer ResetConfig()

	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("COMMAND_PREFIX", "")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("WEB_PORT", "")
	t.Setenv("SUPPRESSION_WINDOW", "")

	assert.PanicsWithValue(t, "failed to load config: DISCORD_TOKEN is required", func() {
		Get()
	})
}

func TestLoadEnvFile(t *testing.T) {
	const key = "GUILDKEEPER_ENV_FILE_CHECK"

	unset := func(t *testing.T) {
		require.NoError(t, os.Unsetenv(key))
		t.Cleanup(func() { _ = os.Unsetenv(key) })
	}

	t.Run("missing file is fine", func(t *testing.T) {
		unset(t)
		chdir(t, t.TempDir())

		require.NoError(t, LoadEnvFile())
		_, ok := os.LookupEnv(key)
		assert.False(t, ok)
	})

	t.Run("file values reach the environment", func(t *testing.T) {
		unset(t)
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(key+"=from-file\n"), 0o600))
		chdir(t, dir)

		require.NoError(t, LoadEnvFile())
		assert.Equal(t, "from-file", os.Getenv(key))
	})

	t.Run("environment wins over file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(key+"=from-file\n"), 0o600))
		chdir(t, dir)
		t.Setenv(key, "from-env")

		require.NoError(t, LoadEnvFile())
		assert.Equal(t, "from-env", os.Getenv(key))
	})
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (stand-in for testing.T.Chdir, added in Go 1.24)
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
