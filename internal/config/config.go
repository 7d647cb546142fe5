// Package config defines the configuration for the Lumiso notification
// pipeline. Configuration is loaded once at process initialization and is
// immutable thereafter, following 12-Factor principles.
//
// Values resolve via: OS Environment (highest) -> dotenv file.
// Any missing required value or invalid format fails startup immediately.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"lumiso/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used throughout configuration to prevent accidental logging of sensitive
// values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the notification pipeline.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"OTEL_SERVICE_NAME" default:"lumiso-notifications"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain Configurations
	Server        ServerConfig
	Database      DatabaseConfig
	AWS           AWSConfig
	Email         EmailConfig
	Guard         GuardConfig
	Notifier      NotifierConfig
	Pipeline      PipelineConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server and public URL configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
	// Public dashboard URL used in email links (no trailing slash).
	DashboardURL string `envconfig:"DASHBOARD_URL" validate:"required,url"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required,url"`

	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// AWSConfig holds AWS resource identifiers and regional configuration.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"eu-central-1"`

	// TriggerQueue receives pipeline action messages for the worker.
	TriggerQueue string `envconfig:"SQS_NOTIFICATION_TRIGGERS"`

	// LocalStack support (empty in prod).
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// EmailConfig holds email delivery provider credentials and sender identity.
type EmailConfig struct {
	ResendAPIKey SecretString `envconfig:"RESEND_API_KEY" validate:"required"`
	FromAddress  string       `envconfig:"EMAIL_FROM_ADDRESS" default:"notifications@lumiso.app"`
	FromName     string       `envconfig:"EMAIL_FROM_NAME" default:"Lumiso"`
}

// GuardConfig holds the messaging guard service endpoint.
type GuardConfig struct {
	BaseURL string       `envconfig:"GUARD_BASE_URL"`
	APIKey  SecretString `envconfig:"GUARD_API_KEY"`
}

// NotifierConfig holds the external project notification service endpoint
// used by the project-milestone handler.
type NotifierConfig struct {
	BaseURL string       `envconfig:"NOTIFIER_BASE_URL"`
	APIKey  SecretString `envconfig:"NOTIFIER_API_KEY"`
}

// PipelineConfig holds batch selection and scheduling tuning parameters.
type PipelineConfig struct {
	PendingBatchLimit    int           `envconfig:"PENDING_BATCH_LIMIT" default:"50"`
	ScheduledBatchLimit  int           `envconfig:"SCHEDULED_BATCH_LIMIT" default:"100"`
	PendingRecencyWindow time.Duration `envconfig:"PENDING_RECENCY_WINDOW" default:"30m"`
	DefaultSendTime      string        `envconfig:"DEFAULT_SEND_TIME" default:"09:00"`
	DefaultLocale        string        `envconfig:"DEFAULT_LOCALE" default:"tr"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"Lumiso"`
}

// LoadError categorizes configuration loading failures to aid debugging.
type LoadError struct {
	Stage   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Stage, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadConfig loads and validates the pipeline configuration.
//
// Steps, in order:
//  1. Enforce UTC process timezone to prevent drift bugs.
//  2. Load a .env file if present (non-fatal if missing; never overrides
//     already-set environment variables).
//  3. Process envconfig tags to populate the Config struct.
//  4. Validate the struct with go-playground/validator.
func LoadConfig() (*Config, error) {
	time.Local = time.UTC

	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &LoadError{
			Stage:   "PARSING_FAILED",
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, &LoadError{
			Stage:   "VALIDATION_FAILED",
			Message: "configuration validation failed",
			Err:     err,
		}
	}

	return &cfg, nil
}
