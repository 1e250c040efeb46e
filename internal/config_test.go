package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		APIBaseURL:      "https://api.example.com",
		APITimeout:      10,
		PollInterval:    50,
		TickInterval:    1,
		PilotGoal:       1000,
		TopN:            3,
		ImpactCacheSize: 256,
		ServerPort:      8080,
		ServerHost:      "localhost",
		LogLevel:        "info",
		LogFormat:       "text",
		LogMaxSizeMB:    50,
		LogMaxBackups:   5,
		Environment:     "development",
	}
}

func TestConfigValidation(t *testing.T) {
	t.Run("validates required fields", func(t *testing.T) {
		config := Config{}
		err := validateConfig(config)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "API_BASE_URL")
		assert.Contains(t, err.Error(), "POLL_INTERVAL_SECONDS")

		err = validateConfig(validConfig())
		assert.NoError(t, err)
	})

	t.Run("rejects relative base URL", func(t *testing.T) {
		config := validConfig()
		config.APIBaseURL = "api.example.com"
		err := validateConfig(config)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "absolute http(s) URL")
	})

	t.Run("validates intervals and sizes", func(t *testing.T) {
		tests := []struct {
			field  string
			mutate func(c *Config)
		}{
			{field: "API_TIMEOUT_SECONDS", mutate: func(c *Config) { c.APITimeout = 0 }},
			{field: "POLL_INTERVAL_SECONDS", mutate: func(c *Config) { c.PollInterval = -1 }},
			{field: "TICK_INTERVAL_SECONDS", mutate: func(c *Config) { c.TickInterval = 0 }},
			{field: "PILOT_GOAL", mutate: func(c *Config) { c.PilotGoal = 0 }},
			{field: "TOP_N", mutate: func(c *Config) { c.TopN = 0 }},
			{field: "IMPACT_CACHE_SIZE", mutate: func(c *Config) { c.ImpactCacheSize = 0 }},
			{field: "SERVER_PORT", mutate: func(c *Config) { c.ServerPort = 70000 }},
			{field: "LOG_MAX_SIZE_MB", mutate: func(c *Config) { c.LogMaxSizeMB = 0 }},
			{field: "LOG_MAX_BACKUPS", mutate: func(c *Config) { c.LogMaxBackups = -1 }},
			{field: "LOG_LEVEL", mutate: func(c *Config) { c.LogLevel = "trace" }},
			{field: "LOG_FORMAT", mutate: func(c *Config) { c.LogFormat = "xml" }},
			{field: "ENVIRONMENT", mutate: func(c *Config) { c.Environment = "qa" }},
		}

		for _, tt := range tests {
			t.Run(tt.field, func(t *testing.T) {
				config := validConfig()
				tt.mutate(&config)

				err := validateConfig(config)
				require.Error(t, err)

				var verrs ValidationErrors
				require.ErrorAs(t, err, &verrs)
				require.Len(t, verrs, 1)
				assert.Equal(t, tt.field, verrs[0].Field)
			})
		}
	})

	t.Run("creates log file directory", func(t *testing.T) {
		config := validConfig()
		config.LogFile = filepath.Join(t.TempDir(), "logs", "dashboard.log")

		require.NoError(t, validateConfig(config))
		_, err := os.Stat(filepath.Dir(config.LogFile))
		assert.NoError(t, err)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("loads config from environment variables", func(t *testing.T) {
		t.Setenv("API_BASE_URL", "https://analytics.example.com/")
		t.Setenv("POLL_INTERVAL_SECONDS", "30")
		t.Setenv("POLL_SKIP_OVERLAP", "true")
		t.Setenv("PILOT_GOAL", "2500")
		t.Setenv("SERVER_PORT", "8081")

		config, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, "https://analytics.example.com", config.APIBaseURL)
		assert.Equal(t, 30, config.PollInterval)
		assert.True(t, config.PollSkipOverlap)
		assert.Equal(t, int64(2500), config.PilotGoal)
		assert.Equal(t, 8081, config.ServerPort)
	})

	t.Run("uses default values for optional fields", func(t *testing.T) {
		t.Setenv("API_BASE_URL", "http://localhost:8000")

		config, err := LoadConfig(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, 50, config.PollInterval)
		assert.Equal(t, 1, config.TickInterval)
		assert.Equal(t, 10, config.APITimeout)
		assert.Equal(t, int64(1000), config.PilotGoal)
		assert.Equal(t, 3, config.TopN)
		assert.Equal(t, 8080, config.ServerPort)
		assert.False(t, config.PollSkipOverlap)
		assert.Equal(t, 50, config.LogMaxSizeMB)
		assert.Equal(t, 5, config.LogMaxBackups)
	})

	t.Run("reads logging settings", func(t *testing.T) {
		t.Setenv("API_BASE_URL", "http://localhost:8000")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("LOG_FORMAT", "json")
		t.Setenv("LOG_MAX_SIZE_MB", "10")
		t.Setenv("LOG_MAX_BACKUPS", "2")

		config, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, "debug", config.LogLevel)
		assert.Equal(t, "json", config.LogFormat)
		assert.Equal(t, 10, config.LogMaxSizeMB)
		assert.Equal(t, 2, config.LogMaxBackups)
	})

	t.Run("reads config.env file", func(t *testing.T) {
		dir := t.TempDir()
		content := "API_BASE_URL=https://file.example.com\nTOP_N=5\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.env"), []byte(content), 0o644))

		config, err := LoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, "https://file.example.com", config.APIBaseURL)
		assert.Equal(t, 5, config.TopN)
	})

	t.Run("handles invalid environment variables", func(t *testing.T) {
		t.Setenv("API_BASE_URL", "http://localhost:8000")
		t.Setenv("SERVER_PORT", "0")

		_, err := LoadConfig(t.TempDir())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "SERVER_PORT")
	})

	t.Run("handles missing required environment variables", func(t *testing.T) {
		t.Setenv("API_BASE_URL", "")

		_, err := LoadConfig(t.TempDir())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "API_BASE_URL")
	})
}

func TestConfigMethods(t *testing.T) {
	t.Run("builds server address", func(t *testing.T) {
		config := Config{ServerHost: "0.0.0.0", ServerPort: 9090}
		assert.Equal(t, "0.0.0.0:9090", config.ServerAddress())
	})

	t.Run("environment checks work correctly", func(t *testing.T) {
		config := Config{Environment: "production"}
		assert.True(t, config.IsProduction())

		config.Environment = "Production"
		assert.True(t, config.IsProduction())

		config.Environment = "development"
		assert.False(t, config.IsProduction())
	})
}
