package app

import (
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/meshcloud/meshstack-auth/internal/observability"
)

// LogFormat represents the logging output format.
type LogFormat string

const (
	LogFormatAuto    LogFormat = observability.FormatAuto
	LogFormatActions LogFormat = observability.FormatActions
	LogFormatText    LogFormat = observability.FormatText
	LogFormatJSON    LogFormat = observability.FormatJSON
)

// TelemetryExporter selects where log records are exported in addition to the primary output.
type TelemetryExporter string

const (
	TelemetryExporterNone     TelemetryExporter = observability.ExporterNone
	TelemetryExporterStdout   TelemetryExporter = observability.ExporterStdout
	TelemetryExporterOTLPHTTP TelemetryExporter = observability.ExporterOTLPHTTP
	TelemetryExporterOTLPGRPC TelemetryExporter = observability.ExporterOTLPGRPC
)

// Default configuration values
const (
	DefaultConfigLogFormat         = LogFormatAuto
	DefaultConfigTelemetryExporter = TelemetryExporterNone
)

// AuthInputs are the step inputs for one login. They are required and never
// modified after loading.
type AuthInputs struct {
	ClientID  string `json:"client_id" validate:"required"`
	KeySecret string `json:"key_secret" validate:"required"`
	BaseURL   string `json:"base_url" validate:"required,url"`
}

// TokenConfig controls where the token file is written.
type TokenConfig struct {
	// Dir overrides the token directory. Filled from RUNNER_TEMP when unset;
	// empty means the OS temporary directory.
	Dir string `json:"dir"`
}

// TelemetryConfig holds OpenTelemetry log export settings.
type TelemetryConfig struct {
	Exporter TelemetryExporter `json:"exporter" validate:"oneof=none stdout otlphttp otlpgrpc"`
}

// Config holds the application's configuration.
type Config struct {
	// LogLevel for logging output (defaults to Info if unset).
	LogLevel  slog.Level      `json:"log_level"`
	LogFormat LogFormat       `json:"log_format" validate:"oneof=auto actions text json"`
	Auth      AuthInputs      `json:"auth"`
	Token     TokenConfig     `json:"token"`
	Telemetry TelemetryConfig `json:"telemetry"`
}

// Default creates a new Config with default values applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset config fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.LogFormat == "" {
		c.LogFormat = DefaultConfigLogFormat
	}
	if c.Telemetry.Exporter == "" {
		c.Telemetry.Exporter = DefaultConfigTelemetryExporter
	}
}

// Validate validates the configuration using struct tags and enum values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	return nil
}
