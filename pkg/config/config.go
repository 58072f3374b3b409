package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/valkey-io/valkey-glide-go/internal/bytesize"
)

// Config represents the process configuration for a glide client process:
// the ambient stack (logging, telemetry, metrics) plus the Connection
// Request fields that seed a Client's ClientConfiguration.
//
// Configuration sources (in order of precedence, see Load):
//  1. Environment variables (GLIDE_*) (highest priority)
//  2. Configuration file (YAML)
//  3. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing consumed by
	// the runtime bootstrap's init_opentelemetry hook.
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics holds the metrics settings described on MetricsConfig.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Client holds the Connection Request fields: address list, TLS,
	// credentials, database index, reconnect strategy, subscriptions,
	// request timeout, client name, protocol version.
	Client ClientConnectionConfig `mapstructure:"client" yaml:"client"`

	// Runtime holds the engine constants exposed by the runtime bootstrap.
	Runtime RuntimeConfig `mapstructure:"runtime" yaml:"runtime"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format: text or json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written: stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
// When enabled, trace data is exported to an OTLP-compatible collector.
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled.
	// Default: false (opt-in for telemetry)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure controls whether to use an insecure (non-TLS) connection.
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`
}

// MetricsConfig holds metrics settings. Nothing outside this package reads
// them: no HTTP endpoint is started on Port, and statistics collection is
// switched on by metrics.InitRegistry, not by Enabled.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the metrics endpoint.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// RuntimeConfig holds constants the runtime bootstrap exposes to the engine.
type RuntimeConfig struct {
	// DefaultTimeout bounds the UDS connect and handshake in create().
	DefaultTimeout time.Duration `mapstructure:"default_timeout" validate:"required,gt=0" yaml:"default_timeout"`

	// MaxInlineArgsBytes is the inline-vs-pointer argument threshold
	// (MAX_REQUEST_ARGS_LEN in spec terms). Accepts human-readable sizes
	// such as "200KB" via internal/bytesize.
	MaxInlineArgsBytes bytesize.ByteSize `mapstructure:"max_inline_args_bytes" yaml:"max_inline_args_bytes"`

	// ReadChunkBytes is the default socket read chunk size for the reader loop.
	ReadChunkBytes bytesize.ByteSize `mapstructure:"read_chunk_bytes" yaml:"read_chunk_bytes"`
}

// NodeAddressConfig is one address in the Connection Request's address list.
type NodeAddressConfig struct {
	Host string `mapstructure:"host" validate:"required" yaml:"host"`
	Port int    `mapstructure:"port" validate:"required,min=1,max=65535" yaml:"port"`
}

// CredentialsConfig carries username/password authentication. Mutually
// exclusive with IAM authentication at the ClientConnectionConfig level.
type CredentialsConfig struct {
	Username string `mapstructure:"username" yaml:"username,omitempty"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
}

// IamAuthConfig carries AWS IAM authentication parameters consumed by the
// refresh_iam_token operation's token provider.
type IamAuthConfig struct {
	Enabled       bool          `mapstructure:"enabled" yaml:"enabled"`
	RefreshMargin time.Duration `mapstructure:"refresh_margin" yaml:"refresh_margin"`
}

// ReconnectStrategyConfig is the Connection Request's reconnect backoff.
type ReconnectStrategyConfig struct {
	NumOfRetries   int     `mapstructure:"num_of_retries" validate:"omitempty,gte=0" yaml:"num_of_retries"`
	Factor         int     `mapstructure:"factor" validate:"omitempty,gt=0" yaml:"factor"`
	ExponentBase   int     `mapstructure:"exponent_base" validate:"omitempty,gt=0" yaml:"exponent_base"`
	JitterFraction float64 `mapstructure:"jitter_fraction" validate:"omitempty,gte=0,lte=1" yaml:"jitter_fraction"`
}

// SubscriptionConfig is one pub/sub subscription entry in the Connection
// Request's subscription set for a given mode (exact, pattern, sharded).
type SubscriptionConfig struct {
	Exact   []string `mapstructure:"exact" yaml:"exact,omitempty"`
	Pattern []string `mapstructure:"pattern" yaml:"pattern,omitempty"`
	Sharded []string `mapstructure:"sharded" yaml:"sharded,omitempty"`
}

// ClientConnectionConfig holds the fields of spec.md's Connection Request
// that seed a Client's ClientConfiguration at create() time.
type ClientConnectionConfig struct {
	Addresses []NodeAddressConfig `mapstructure:"addresses" validate:"required,min=1,dive" yaml:"addresses"`

	UseTLS bool `mapstructure:"use_tls" yaml:"use_tls"`

	Credentials *CredentialsConfig `mapstructure:"credentials" yaml:"credentials,omitempty"`
	Iam         *IamAuthConfig     `mapstructure:"iam" yaml:"iam,omitempty"`

	// DatabaseID selects the logical database (standalone mode only).
	DatabaseID int `mapstructure:"database_id" validate:"omitempty,gte=0" yaml:"database_id"`

	ClusterModeEnabled bool `mapstructure:"cluster_mode_enabled" yaml:"cluster_mode_enabled"`

	// ReadFrom selects the read-from strategy: primary, prefer_replica, az_affinity.
	ReadFrom string `mapstructure:"read_from" validate:"omitempty,oneof=primary prefer_replica az_affinity" yaml:"read_from"`

	PeriodicChecksEnabled  bool          `mapstructure:"periodic_checks_enabled" yaml:"periodic_checks_enabled"`
	PeriodicChecksInterval time.Duration `mapstructure:"periodic_checks_interval" yaml:"periodic_checks_interval"`

	ReconnectStrategy ReconnectStrategyConfig `mapstructure:"reconnect_strategy" yaml:"reconnect_strategy"`

	Subscriptions SubscriptionConfig `mapstructure:"subscriptions" yaml:"subscriptions"`

	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"required,gt=0" yaml:"request_timeout"`

	ClientName string `mapstructure:"client_name" yaml:"client_name,omitempty"`

	// ProtocolVersion selects RESP2 or RESP3.
	ProtocolVersion string `mapstructure:"protocol_version" validate:"required,oneof=RESP2 RESP3" yaml:"protocol_version"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (GLIDE_*)
//  2. Configuration file
//  3. Default values
//
// When no configuration file is found, Load returns GetDefaultConfig()
// and no environment variable is consulted.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !configFileFound {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  glide-cli init\n\n"+
				"Or specify a custom config file:\n"+
				"  glide-cli <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  glide-cli init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the specified file path as YAML.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: config files may carry a plaintext password.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the GLIDE_ prefix and underscores.
	// Example: GLIDE_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("GLIDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error) where fileFound indicates if a config file was found.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

// configDecodeHooks returns a combined decode hook for all custom types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook converts strings and integers to ByteSizeValue,
// enabling human-readable sizes like "1Gi", "200KB", or plain numbers.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook converts strings to time.Duration, enabling
// human-readable durations like "30s", "5m", "1h".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "glide")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "glide")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	path := GetDefaultConfigPath()
	_, err := os.Stat(path)
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
