package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the gt1000ctl configuration.
//
// This structure captures the static configuration of the protocol engine:
//   - Logging configuration
//   - Telemetry/tracing configuration
//   - MIDI transport settings (port selection, device ID)
//   - Transaction layer timing (retry/poll/timeout)
//   - Handshake timing
//   - State mirror/scheduler cadence
//   - Metrics server
//   - HTTP facade (API) server
//
// Configuration sources (in order of precedence):
//  1. Environment variables (GT1000CTL_*)
//  2. Configuration file (YAML)
//  3. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Transport configures the MIDI port and device addressing
	Transport TransportConfig `mapstructure:"transport" yaml:"transport"`

	// Transaction configures the fetch/set correlation and retry behavior
	Transaction TransactionConfig `mapstructure:"transaction" yaml:"transaction"`

	// Handshake configures the identity and editor-mode probe sequence
	Handshake HandshakeConfig `mapstructure:"handshake" yaml:"handshake"`

	// Mirror configures the background state-mirror refresh cadence
	Mirror MirrorConfig `mapstructure:"mirror" yaml:"mirror"`

	// Metrics contains Prometheus metrics server configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// API contains the HTTP facade server configuration
	API APIConfig `mapstructure:"api" yaml:"api"`

	// Schema configures the JSON address-schema bundle
	Schema SchemaConfig `mapstructure:"schema" yaml:"schema"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
// When enabled, trace data is exported to an OTLP-compatible collector
// (e.g., Jaeger, Tempo, or any OTLP receiver).
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled
	// Default: false (opt-in for telemetry)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port)
	// Default: "localhost:4317" (standard OTLP gRPC port)
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure controls whether to use insecure (non-TLS) connection
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0)
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`
}

// TransportConfig configures the MIDI transport layer.
type TransportConfig struct {
	// PortNamePrefix selects the first MIDI port whose name begins with it
	// (e.g. "GT-1000"). ApplyDefaults replaces an empty value with
	// $GT1000CTL_PORT_PREFIX, or "GT-1000" when that is unset.
	PortNamePrefix string `mapstructure:"port_name_prefix" yaml:"port_name_prefix"`

	// InPort, when set, selects the MIDI input port by exact name, bypassing
	// prefix matching and interactive selection.
	InPort string `mapstructure:"in_port" yaml:"in_port,omitempty"`

	// OutPort, when set, selects the MIDI output port by exact name.
	OutPort string `mapstructure:"out_port" yaml:"out_port,omitempty"`

	// DeviceID is the Roland device ID used in SysEx frames (0x00-0x1F).
	DeviceID uint8 `mapstructure:"device_id" validate:"max=31" yaml:"device_id"`
}

// TransactionConfig controls fetch/set correlation, polling, and retry.
type TransactionConfig struct {
	// PollInterval is how often the transaction layer checks for a correlated reply.
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"required,gt=0" yaml:"poll_interval"`

	// MaxRetries is the number of polls attempted before declaring a timeout.
	MaxRetries int `mapstructure:"max_retries" validate:"required,gt=0" yaml:"max_retries"`
}

// HandshakeConfig controls the identity and editor-mode handshake sequence.
type HandshakeConfig struct {
	// IdentityTimeout bounds how long to wait for a Universal Non-RT Identity Reply.
	IdentityTimeout time.Duration `mapstructure:"identity_timeout" validate:"required,gt=0" yaml:"identity_timeout"`

	// ProbeComputedChecksum, when true, sends the arithmetically computed
	// checksum on the first editor-mode probe instead of the fixed override
	// byte the device is known to accept there. Off by default; useful when
	// capturing traffic from a real device to settle which checksum it
	// actually expects.
	ProbeComputedChecksum bool `mapstructure:"probe_computed_checksum" yaml:"probe_computed_checksum"`
}

// MirrorConfig controls the background state-mirror refresh loop.
type MirrorConfig struct {
	// RefreshInterval is the nominal period between full state refreshes.
	RefreshInterval time.Duration `mapstructure:"refresh_interval" validate:"required,gt=0" yaml:"refresh_interval"`

	// ShutdownPollInterval is the sleep granularity used while waiting out
	// RefreshInterval, so shutdown remains responsive.
	ShutdownPollInterval time.Duration `mapstructure:"shutdown_poll_interval" validate:"required,gt=0" yaml:"shutdown_poll_interval"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
type MetricsConfig struct {
	// Enabled controls whether metrics collection and HTTP server are enabled
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the metrics endpoint
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// APIConfig configures the HTTP facade server exposing get_state/toggle/
// set_value/set_type/list_types over chi.
type APIConfig struct {
	// Enabled controls whether the HTTP facade is started.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the facade server.
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// ReadTimeout bounds how long reading a request may take.
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout bounds how long writing a response may take.
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
}

// SchemaConfig configures the embedded address-schema bundle.
type SchemaConfig struct {
	// OverridePath, when set, loads the schema bundle from a file on disk
	// instead of the embedded default. Useful for testing a revised table
	// before baking it into the binary.
	OverridePath string `mapstructure:"override_path" yaml:"override_path,omitempty"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest), when a config file is found:
//  1. Environment variables (GT1000CTL_*)
//  2. Configuration file
//  3. Default values
//
// When no config file is found, the default configuration is returned and
// GT1000CTL_* variables are not read, except GT1000CTL_PORT_PREFIX, which
// the defaults themselves consult.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
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
				"  gt1000ctl init\n\n"+
				"Or specify a custom config file:\n"+
				"  gt1000ctl <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  gt1000ctl init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the specified file path.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the configuration against its struct tags using
// go-playground/validator, returning a combined error describing every
// violation found.
func Validate(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: failed on '%s'", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use GT1000CTL_ prefix and underscores
	// Example: GT1000CTL_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("GT1000CTL")
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

// configDecodeHooks returns a combined decode hook for time.Duration parsing.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
	)
}

// durationDecodeHook returns a mapstructure decode hook that converts strings
// to time.Duration. This enables config files to use human-readable durations
// like "30s", "5m", "1h".
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
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "gt1000ctl")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "gt1000ctl")
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

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}

// InitConfig writes a fresh default configuration file to the default
// location, failing if one already exists unless force is set. Returns the
// path written.
func InitConfig(force bool) (string, error) {
	return GetDefaultConfigPath(), InitConfigToPath(GetDefaultConfigPath(), force)
}

// InitConfigToPath writes a fresh default configuration file to path,
// failing if one already exists unless force is set.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
		}
	}
	return SaveConfig(GetDefaultConfig(), path)
}
