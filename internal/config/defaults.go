package config

import (
	"os"
	"strings"
	"time"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyTransportDefaults(&cfg.Transport)
	applyTransactionDefaults(&cfg.Transaction)
	applyHandshakeDefaults(&cfg.Handshake)
	applyMirrorDefaults(&cfg.Mirror)
	applyMetricsDefaults(&cfg.Metrics)
	applyAPIDefaults(&cfg.API)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
}

// applyLoggingDefaults sets default logging configuration.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}

	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults sets default telemetry configuration.
// Telemetry defaults to disabled; once enabled, point at a local collector.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}

	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	if !cfg.Enabled {
		cfg.Insecure = true
	}
}

// applyTransportDefaults sets default MIDI transport configuration.
// DeviceID 0x10 matches the GT-1000's factory default device ID.
func applyTransportDefaults(cfg *TransportConfig) {
	if cfg.PortNamePrefix == "" {
		cfg.PortNamePrefix = envOr("GT1000CTL_PORT_PREFIX", "GT-1000")
	}

	if cfg.DeviceID == 0 {
		cfg.DeviceID = 0x10
	}
}

// applyTransactionDefaults sets default transaction polling/retry configuration.
// 100ms poll x 100 retries bounds a single transaction to ~10s before timeout.
func applyTransactionDefaults(cfg *TransactionConfig) {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}

	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 100
	}
}

// applyHandshakeDefaults sets default handshake timing configuration.
func applyHandshakeDefaults(cfg *HandshakeConfig) {
	if cfg.IdentityTimeout == 0 {
		cfg.IdentityTimeout = 3 * time.Second
	}
}

// applyMirrorDefaults sets default state-mirror scheduler configuration.
// A 5s refresh cadence is broken into 0.5s shutdown-poll slices so a
// shutdown request is honored within half a second.
func applyMirrorDefaults(cfg *MirrorConfig) {
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = 5 * time.Second
	}

	if cfg.ShutdownPollInterval == 0 {
		cfg.ShutdownPollInterval = 500 * time.Millisecond
	}
}

// applyMetricsDefaults sets default metrics server configuration.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// applyAPIDefaults sets default HTTP facade server configuration.
func applyAPIDefaults(cfg *APIConfig) {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}

	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}

	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
}

// GetDefaultConfig returns a Config populated entirely with default values.
// Used when no configuration file is found.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// envOr returns the value of the named environment variable, or fallback
// if it is unset or empty.
func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
