package config

import (
	"time"

	"github.com/valkey-io/valkey-glide-go/internal/bytesize"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Default strategy: zero values (0, "", empty slices) of the fields set
// below are replaced with defaults; explicit values are preserved.
// Boolean and pointer fields are left as they are.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applyRuntimeDefaults(&cfg.Runtime)
	applyClientDefaults(&cfg.Client)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = normalizeLevel(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func normalizeLevel(level string) string {
	switch level {
	case "debug", "DEBUG":
		return "DEBUG"
	case "info", "INFO":
		return "INFO"
	case "warn", "WARN":
		return "WARN"
	case "error", "ERROR":
		return "ERROR"
	default:
		return level
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// applyRuntimeDefaults sets the engine constants exposed by the runtime bootstrap.
func applyRuntimeDefaults(cfg *RuntimeConfig) {
	if cfg.DefaultTimeout == 0 {
		cfg.DefaultTimeout = 250 * time.Millisecond
	}
	if cfg.MaxInlineArgsBytes == 0 {
		cfg.MaxInlineArgsBytes = bytesize.ByteSize(200 * bytesize.KB)
	}
	if cfg.ReadChunkBytes == 0 {
		cfg.ReadChunkBytes = bytesize.ByteSize(64 * bytesize.KiB)
	}
}

// applyClientDefaults sets Connection Request defaults.
func applyClientDefaults(cfg *ClientConnectionConfig) {
	if len(cfg.Addresses) == 0 {
		cfg.Addresses = []NodeAddressConfig{{Host: "localhost", Port: 6379}}
	}

	if cfg.ReadFrom == "" {
		cfg.ReadFrom = "primary"
	}

	if cfg.ReconnectStrategy.NumOfRetries == 0 {
		cfg.ReconnectStrategy.NumOfRetries = 5
	}
	if cfg.ReconnectStrategy.Factor == 0 {
		cfg.ReconnectStrategy.Factor = 2
	}
	if cfg.ReconnectStrategy.ExponentBase == 0 {
		cfg.ReconnectStrategy.ExponentBase = 2
	}

	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 250 * time.Millisecond
	}

	if cfg.ProtocolVersion == "" {
		cfg.ProtocolVersion = "RESP3"
	}

	if cfg.PeriodicChecksEnabled && cfg.PeriodicChecksInterval == 0 {
		cfg.PeriodicChecksInterval = 30 * time.Second
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
