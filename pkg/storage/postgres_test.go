package storage

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig("postgres://localhost/epiwatch")

	if config.URL != "postgres://localhost/epiwatch" {
		t.Errorf("unexpected URL: %s", config.URL)
	}
	if config.MaxConns <= config.MinConns {
		t.Errorf("MaxConns (%d) must exceed MinConns (%d)", config.MaxConns, config.MinConns)
	}
	if config.Timeout <= 0 {
		t.Error("Timeout must be positive")
	}
	if config.MaxLifetime < time.Minute {
		t.Errorf("MaxLifetime too small: %v", config.MaxLifetime)
	}
}
