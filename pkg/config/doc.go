// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings.
//
// # Configuration Structure
//
// Storage settings:
//
//	EPIWATCH_POSTGRES_URL="postgres://localhost/epiwatch"
//	EPIWATCH_POSTGRES_MAX_CONNS="20"
//	EPIWATCH_POSTGRES_MIN_CONNS="5"
//	EPIWATCH_POSTGRES_TIMEOUT="10s"
//
// Auth settings:
//
//	EPIWATCH_JWT_SECRET=""         # required, at least 32 bytes
//	EPIWATCH_TOKEN_TTL="24h"
//
// Observability settings:
//
//	EPIWATCH_LOG_LEVEL="info"      # debug, info, warn, error
//	EPIWATCH_METRICS_ENABLED="true"
//
// Monitor settings:
//
//	EPIWATCH_MONITOR_SCHEDULE="0 */6 * * *"
//	EPIWATCH_MONITOR_COUNTRIES="france,germany,italy"
package config
