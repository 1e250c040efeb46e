package internal

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	// Analytics source configuration
	APIBaseURL      string `mapstructure:"API_BASE_URL"`
	APITimeout      int    `mapstructure:"API_TIMEOUT_SECONDS"`
	PollInterval    int    `mapstructure:"POLL_INTERVAL_SECONDS"`
	TickInterval    int    `mapstructure:"TICK_INTERVAL_SECONDS"`
	PollSkipOverlap bool   `mapstructure:"POLL_SKIP_OVERLAP"`

	// Dashboard configuration
	PilotGoal       int64 `mapstructure:"PILOT_GOAL"`
	TopN            int   `mapstructure:"TOP_N"`
	ImpactCacheSize int   `mapstructure:"IMPACT_CACHE_SIZE"`

	// API Server configuration
	ServerPort int    `mapstructure:"SERVER_PORT"`
	ServerHost string `mapstructure:"SERVER_HOST"`

	// Logging configuration
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogFormat     string `mapstructure:"LOG_FORMAT"`
	LogFile       string `mapstructure:"LOG_FILE"`
	LogMaxSizeMB  int    `mapstructure:"LOG_MAX_SIZE_MB"`
	LogMaxBackups int    `mapstructure:"LOG_MAX_BACKUPS"`

	// Runtime environment
	Environment string `mapstructure:"ENVIRONMENT"`
}

// ValidationError represents configuration validation errors
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error for field '%s': %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("configuration validation failed:\n%s", strings.Join(messages, "\n"))
}

func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AutomaticEnv()

	setDefaults(v)

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return config, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; environment variables and defaults apply
	}

	if err := v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return config, err
	}

	config.APIBaseURL = strings.TrimRight(strings.TrimSpace(config.APIBaseURL), "/")
	if config.LogFile != "" {
		config.LogFile = expandPath(config.LogFile)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	// Analytics source defaults
	v.SetDefault("API_BASE_URL", "")
	v.SetDefault("API_TIMEOUT_SECONDS", 10)
	v.SetDefault("POLL_INTERVAL_SECONDS", 50)
	v.SetDefault("TICK_INTERVAL_SECONDS", 1)
	v.SetDefault("POLL_SKIP_OVERLAP", false)

	// Dashboard defaults
	v.SetDefault("PILOT_GOAL", 1000)
	v.SetDefault("TOP_N", 3)
	v.SetDefault("IMPACT_CACHE_SIZE", 256)

	// API Server defaults
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_HOST", "localhost")

	// Logging defaults
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_MAX_SIZE_MB", 50)
	v.SetDefault("LOG_MAX_BACKUPS", 5)

	// Runtime defaults
	v.SetDefault("ENVIRONMENT", "development")
}

func validateConfig(config Config) error {
	var errors ValidationErrors

	if strings.TrimSpace(config.APIBaseURL) == "" {
		errors = append(errors, ValidationError{
			Field:   "API_BASE_URL",
			Message: "analytics API base URL is required",
		})
	} else if u, err := url.Parse(strings.TrimSpace(config.APIBaseURL)); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "API_BASE_URL",
			Message: "analytics API base URL must be an absolute http(s) URL",
		})
	}

	if config.APITimeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "API_TIMEOUT_SECONDS",
			Message: "API timeout must be greater than 0 seconds",
		})
	}

	if config.PollInterval <= 0 {
		errors = append(errors, ValidationError{
			Field:   "POLL_INTERVAL_SECONDS",
			Message: "poll interval must be greater than 0 seconds",
		})
	}

	if config.TickInterval <= 0 {
		errors = append(errors, ValidationError{
			Field:   "TICK_INTERVAL_SECONDS",
			Message: "tick interval must be greater than 0 seconds",
		})
	}

	if config.PilotGoal <= 0 {
		errors = append(errors, ValidationError{
			Field:   "PILOT_GOAL",
			Message: "pilot goal must be greater than 0",
		})
	}

	if config.TopN <= 0 {
		errors = append(errors, ValidationError{
			Field:   "TOP_N",
			Message: "top N must be greater than 0",
		})
	}

	if config.ImpactCacheSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   "IMPACT_CACHE_SIZE",
			Message: "impact cache size must be greater than 0",
		})
	}

	if config.ServerPort <= 0 || config.ServerPort > 65535 {
		errors = append(errors, ValidationError{
			Field:   "SERVER_PORT",
			Message: "server port must be a valid port number (1-65535)",
		})
	}

	// Log level validation
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, strings.ToLower(config.LogLevel)) {
		errors = append(errors, ValidationError{
			Field:   "LOG_LEVEL",
			Message: fmt.Sprintf("log level must be one of: %s", strings.Join(validLogLevels, ", ")),
		})
	}

	// Log format validation
	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, strings.ToLower(config.LogFormat)) {
		errors = append(errors, ValidationError{
			Field:   "LOG_FORMAT",
			Message: fmt.Sprintf("log format must be one of: %s", strings.Join(validLogFormats, ", ")),
		})
	}

	if config.LogMaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "LOG_MAX_SIZE_MB",
			Message: "log file size limit must be greater than 0 MB",
		})
	}

	if config.LogMaxBackups <= 0 {
		errors = append(errors, ValidationError{
			Field:   "LOG_MAX_BACKUPS",
			Message: "log backups to keep must be greater than 0",
		})
	}

	// Environment validation
	validEnvironments := []string{"development", "staging", "production"}
	if !contains(validEnvironments, strings.ToLower(config.Environment)) {
		errors = append(errors, ValidationError{
			Field:   "ENVIRONMENT",
			Message: fmt.Sprintf("environment must be one of: %s", strings.Join(validEnvironments, ", ")),
		})
	}

	// Log file validation (if specified)
	if config.LogFile != "" {
		logDir := filepath.Dir(expandPath(config.LogFile))
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			errors = append(errors, ValidationError{
				Field:   "LOG_FILE",
				Message: fmt.Sprintf("cannot create log file directory '%s': %v", logDir, err),
			})
		}
	}

	if len(errors) > 0 {
		return errors
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	path = os.ExpandEnv(path)

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return path
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// ServerAddress returns the host:port the API server listens on
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Environment) == "production"
}
