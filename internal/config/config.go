// Package config defines the global configuration structure for the Capsule
// pricing service. Configuration is loaded once at process startup and is
// immutable thereafter. It follows 12-Factor App principles by strictly
// separating code from configuration.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> AWS SSM Parameter Store (Lowest)
//
// Any missing required value or invalid format causes startup to fail
// immediately (fail fast).
package config

import (
	"time"

	"capsule/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type used
// throughout configuration to prevent accidental logging of sensitive values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the Capsule pricing service.
// It is populated once during process initialization and never modified.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"capsule-pricing"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain Configurations
	Server   ServerConfig
	Database DatabaseConfig
	AWS      AWSConfig
	Catalog  CatalogConfig
	Payment  PaymentConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// ServerConfig holds HTTP server and public URL configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`

	// CheckoutURL is the public checkout page that quote handoff links point
	// at (no trailing slash), e.g. https://capsule.example.com/checkout.
	CheckoutURL string `envconfig:"CHECKOUT_URL" validate:"required,url"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	// Resolved from SSM or Env
	URL SecretString `envconfig:"DATABASE_URL" validate:"required,url"`

	// Tuning Parameters
	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// AWSConfig holds AWS regional configuration for SSM secret resolution.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`
}

// CatalogConfig holds the upstream plan catalog service configuration.
// The plan list is fetched once at startup and cached for the process
// lifetime; a fetch failure falls back to the built-in plan tables.
type CatalogConfig struct {
	PlanServiceURL string        `envconfig:"PLAN_SERVICE_URL" validate:"omitempty,url"`
	Timeout        time.Duration `envconfig:"PLAN_SERVICE_TIMEOUT" default:"5s"`
	UserAgent      string        `envconfig:"PLAN_SERVICE_USER_AGENT" default:"Capsule-Pricing/1.0"`
}

// PaymentConfig holds PayPal REST API credentials and redirect URLs for the
// subscription approval flow.
type PaymentConfig struct {
	PayPalClientID string       `envconfig:"PAYPAL_CLIENT_ID" validate:"required"`
	PayPalSecret   SecretString `envconfig:"PAYPAL_SECRET" validate:"required"`
	// PayPalAPIBase selects the live or sandbox REST endpoint.
	PayPalAPIBase string `envconfig:"PAYPAL_API_BASE" default:"https://api-m.sandbox.paypal.com" validate:"url"`
	ReturnURL     string `envconfig:"PAYPAL_RETURN_URL" validate:"required,url"`
	CancelURL     string `envconfig:"PAYPAL_CANCEL_URL" validate:"required,url"`
}

// BuildInfo holds build-time metadata injected via ldflags.
// These values are NOT populated from environment variables.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrMissingEnv indicates a required environment variable was not found.
	ErrMissingEnv ConfigErrorType = "MISSING_ENV"
	// ErrSSMResolution indicates a failure when fetching secrets from AWS SSM.
	ErrSSMResolution ConfigErrorType = "SSM_FAILURE"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
