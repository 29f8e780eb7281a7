package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/epiwatch/epiwatch/pkg/auth"
	"github.com/epiwatch/epiwatch/pkg/observability"
	"github.com/epiwatch/epiwatch/pkg/storage"
)

// Config holds all application configuration
type Config struct {
	// Storage configuration
	Storage storage.Config

	// Auth configuration
	Auth AuthConfig

	// Observability configuration
	Observability ObservabilityConfig

	// Monitor configuration
	Monitor MonitorConfig
}

// AuthConfig holds token signing configuration
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// MonitorConfig holds the scheduled consistency monitor settings
type MonitorConfig struct {
	Schedule  string
	Countries []string
}

// MonitorSettings is the configuration subset the consistency monitor
// needs: the store and the sweep schedule, without the auth settings only
// the service uses.
type MonitorSettings struct {
	Storage storage.Config
	Monitor MonitorConfig
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Storage:       loadStorageConfig(),
		Auth:          loadAuthConfig(),
		Observability: loadObservabilityConfig(),
		Monitor:       loadMonitorConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadMonitorConfig loads the consistency monitor configuration from
// environment variables
func LoadMonitorConfig() (*MonitorSettings, error) {
	cfg := &MonitorSettings{
		Storage: loadStorageConfig(),
		Monitor: loadMonitorConfig(),
	}

	if cfg.Storage.URL == "" {
		return nil, fmt.Errorf("configuration validation failed: postgres URL is required")
	}

	return cfg, nil
}

// loadStorageConfig loads storage configuration from environment
func loadStorageConfig() storage.Config {
	cfg := storage.DefaultConfig(getEnv("EPIWATCH_POSTGRES_URL", ""))

	if maxConns := getEnvInt("EPIWATCH_POSTGRES_MAX_CONNS", 0); maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	if minConns := getEnvInt("EPIWATCH_POSTGRES_MIN_CONNS", 0); minConns > 0 {
		cfg.MinConns = minConns
	}
	if timeout := getEnvDuration("EPIWATCH_POSTGRES_TIMEOUT", 0); timeout > 0 {
		cfg.Timeout = timeout
	}
	if maxLifetime := getEnvDuration("EPIWATCH_POSTGRES_MAX_LIFETIME", 0); maxLifetime > 0 {
		cfg.MaxLifetime = maxLifetime
	}
	if maxIdleTime := getEnvDuration("EPIWATCH_POSTGRES_MAX_IDLE_TIME", 0); maxIdleTime > 0 {
		cfg.MaxIdleTime = maxIdleTime
	}

	return cfg
}

// loadAuthConfig loads token signing configuration from environment
func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret: getEnv("EPIWATCH_JWT_SECRET", ""),
		TokenTTL:  getEnvDuration("EPIWATCH_TOKEN_TTL", 24*time.Hour),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       observability.ParseLevel(getEnv("EPIWATCH_LOG_LEVEL", "info")),
		MetricsEnabled: getEnvBool("EPIWATCH_METRICS_ENABLED", true),
	}
}

// loadMonitorConfig loads the consistency monitor configuration from environment
func loadMonitorConfig() MonitorConfig {
	cfg := MonitorConfig{
		Schedule: getEnv("EPIWATCH_MONITOR_SCHEDULE", "0 */6 * * *"),
	}
	if countries := getEnv("EPIWATCH_MONITOR_COUNTRIES", ""); countries != "" {
		cfg.Countries = ParseCountryList(countries)
	}
	return cfg
}

// ParseCountryList splits a comma-separated country list, trimming
// whitespace and dropping empty entries.
func ParseCountryList(list string) []string {
	var out []string
	for _, c := range strings.Split(list, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Storage.URL == "" {
		return fmt.Errorf("postgres URL is required")
	}
	if len(c.Auth.JWTSecret) < auth.MinSecretLength {
		return fmt.Errorf("JWT secret must be at least %d bytes", auth.MinSecretLength)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}
	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
