package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Port:              "8080",
		Backend:           BackendMemory,
		RetryAttempts:     5,
		RetryInitialDelay: 10 * time.Millisecond,
		RetryMaxDelay:     500 * time.Millisecond,
		CategoryCacheTTL:  time.Minute,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		errorString string
	}{
		{name: "valid memory backend", mutate: func(c *Config) {}},
		{
			name:   "valid tables backend",
			mutate: func(c *Config) { c.Backend = BackendTables; c.TableServiceURL = "http://127.0.0.1:10002/devstoreaccount1" },
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "unknown backend",
			mutate:      func(c *Config) { c.Backend = "sqlite" },
			errorString: "invalid storage backend 'sqlite'",
		},
		{
			name:        "tables backend without URL",
			mutate:      func(c *Config) { c.Backend = BackendTables },
			errorString: "TABLE_SERVICE_URL is required",
		},
		{
			name:        "zero retry attempts",
			mutate:      func(c *Config) { c.RetryAttempts = 0 },
			errorString: "invalid retry attempts 0",
		},
		{
			name:        "max delay below initial delay",
			mutate:      func(c *Config) { c.RetryMaxDelay = time.Millisecond },
			errorString: "invalid retry delays",
		},
		{
			name:        "bad log level",
			mutate:      func(c *Config) { c.LogLevel = "loud" },
			errorString: "invalid log level: loud",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errorString == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "tables")
	t.Setenv("TABLE_SERVICE_URL", "https://acct.table.core.windows.net")
	t.Setenv("RETRY_ATTEMPTS", "7")
	t.Setenv("CATEGORY_CACHE_TTL", "30s")

	v := viper.New()
	SetDefaults(v)
	for key, env := range keys {
		require.NoError(t, v.BindEnv(key, env))
	}

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendTables, cfg.Backend)
	assert.Equal(t, "https://acct.table.core.windows.net", cfg.TableServiceURL)
	assert.Equal(t, "transactions", cfg.TransactionsTable)
	assert.Equal(t, 7, cfg.RetryAttempts)
	assert.Equal(t, 30*time.Second, cfg.CategoryCacheTTL)
	assert.Equal(t, 10*time.Millisecond, cfg.RetryInitialDelay)
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.ImportEnabled())
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"9090\"\nlogging:\n  format: json\n"), 0o600))

	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v, path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "json", cfg.LogFormat)

	logger, err := cfg.Logger()
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
