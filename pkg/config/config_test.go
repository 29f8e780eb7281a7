package config

import (
	"os"
	"testing"
	"time"

	"github.com/epiwatch/epiwatch/pkg/observability"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// TestGetEnv tests the getEnv helper function
func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns env value when set",
			key:          "TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
		{
			name:         "returns default when env not set",
			key:          "TEST_VAR_NOT_SET",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}
			if got := getEnv(tt.key, tt.defaultValue); got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	os.Setenv("TEST_DURATION", "45s")
	defer os.Unsetenv("TEST_DURATION")

	if got := getEnvDuration("TEST_DURATION", time.Minute); got != 45*time.Second {
		t.Errorf("getEnvDuration = %v, want 45s", got)
	}
	if got := getEnvDuration("TEST_DURATION_NOT_SET", time.Minute); got != time.Minute {
		t.Errorf("getEnvDuration default = %v, want 1m", got)
	}

	os.Setenv("TEST_DURATION_BAD", "not-a-duration")
	defer os.Unsetenv("TEST_DURATION_BAD")
	if got := getEnvDuration("TEST_DURATION_BAD", time.Minute); got != time.Minute {
		t.Errorf("getEnvDuration with invalid value = %v, want default", got)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	os.Setenv("EPIWATCH_POSTGRES_URL", "postgres://localhost/epiwatch")
	os.Setenv("EPIWATCH_JWT_SECRET", testSecret)
	defer os.Unsetenv("EPIWATCH_POSTGRES_URL")
	defer os.Unsetenv("EPIWATCH_JWT_SECRET")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("expected default TTL 24h, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Observability.LogLevel != observability.InfoLevel {
		t.Errorf("expected default log level info, got %v", cfg.Observability.LogLevel)
	}
	if !cfg.Observability.MetricsEnabled {
		t.Error("expected metrics enabled by default")
	}
	if cfg.Monitor.Schedule != "0 */6 * * *" {
		t.Errorf("unexpected default monitor schedule: %s", cfg.Monitor.Schedule)
	}
	if cfg.Storage.MaxConns <= 0 {
		t.Error("expected positive default max conns")
	}
}

func TestLoadConfigMonitorCountries(t *testing.T) {
	os.Setenv("EPIWATCH_POSTGRES_URL", "postgres://localhost/epiwatch")
	os.Setenv("EPIWATCH_JWT_SECRET", testSecret)
	os.Setenv("EPIWATCH_MONITOR_COUNTRIES", "france, germany ,,italy")
	defer os.Unsetenv("EPIWATCH_POSTGRES_URL")
	defer os.Unsetenv("EPIWATCH_JWT_SECRET")
	defer os.Unsetenv("EPIWATCH_MONITOR_COUNTRIES")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	want := []string{"france", "germany", "italy"}
	if len(cfg.Monitor.Countries) != len(want) {
		t.Fatalf("expected %d countries, got %v", len(want), cfg.Monitor.Countries)
	}
	for i, c := range want {
		if cfg.Monitor.Countries[i] != c {
			t.Errorf("country[%d] = %s, want %s", i, cfg.Monitor.Countries[i], c)
		}
	}
}

func TestLoadMonitorConfig(t *testing.T) {
	// The monitor subset needs no JWT secret.
	os.Setenv("EPIWATCH_POSTGRES_URL", "postgres://localhost/epiwatch")
	os.Setenv("EPIWATCH_MONITOR_COUNTRIES", "france,germany")
	defer os.Unsetenv("EPIWATCH_POSTGRES_URL")
	defer os.Unsetenv("EPIWATCH_MONITOR_COUNTRIES")

	cfg, err := LoadMonitorConfig()
	if err != nil {
		t.Fatalf("LoadMonitorConfig failed: %v", err)
	}

	if cfg.Storage.URL != "postgres://localhost/epiwatch" {
		t.Errorf("unexpected storage URL: %s", cfg.Storage.URL)
	}
	if cfg.Storage.MaxConns <= 0 {
		t.Error("expected pooled defaults on the monitor storage config")
	}
	if len(cfg.Monitor.Countries) != 2 {
		t.Errorf("expected 2 countries, got %v", cfg.Monitor.Countries)
	}
}

func TestLoadMonitorConfigRequiresURL(t *testing.T) {
	if _, err := LoadMonitorConfig(); err == nil {
		t.Error("expected error for missing postgres URL")
	}
}

func TestParseCountryList(t *testing.T) {
	got := ParseCountryList(" france, germany ,,italy ")
	want := []string{"france", "germany", "italy"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if out := ParseCountryList("  "); out != nil {
		t.Errorf("expected nil for a blank list, got %v", out)
	}
}

func TestValidateRejectsMissingURL(t *testing.T) {
	cfg := &Config{}
	cfg.Auth.JWTSecret = testSecret
	cfg.Auth.TokenTTL = time.Hour

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing postgres URL")
	}
}

func TestValidateRejectsShortSecret(t *testing.T) {
	cfg := &Config{}
	cfg.Storage.URL = "postgres://localhost/epiwatch"
	cfg.Auth.JWTSecret = "too-short"
	cfg.Auth.TokenTTL = time.Hour

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for short JWT secret")
	}
}
