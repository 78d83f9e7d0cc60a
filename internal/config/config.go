package config

import (
	"time"

	"github.com/vyrodovalexey/avrouter/internal/observability"
)

// Config holds all settings for the router process.
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	CORS    CORSConfig    `yaml:"cors" json:"cors"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
	Tracing TracingConfig `yaml:"tracing" json:"tracing"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string          `yaml:"host" json:"host"`
	Port            int             `yaml:"port" json:"port"`
	ReadTimeout     Duration        `yaml:"readTimeout" json:"readTimeout"`
	WriteTimeout    Duration        `yaml:"writeTimeout" json:"writeTimeout"`
	IdleTimeout     Duration        `yaml:"idleTimeout" json:"idleTimeout"`
	ShutdownTimeout Duration        `yaml:"shutdownTimeout" json:"shutdownTimeout"`
	MaxBodyBytes    int64           `yaml:"maxBodyBytes" json:"maxBodyBytes"`
	Admission       AdmissionConfig `yaml:"admission" json:"admission"`
}

// AdmissionConfig bounds how many requests are dispatched concurrently.
// Requests beyond MaxInFlight queue for up to QueueTimeout before being
// rejected with 503.
type AdmissionConfig struct {
	MaxInFlight  int      `yaml:"maxInFlight" json:"maxInFlight"`
	QueueTimeout Duration `yaml:"queueTimeout" json:"queueTimeout"`
}

// CORSConfig holds the origin-policy settings. PolicyExpression, when
// set, takes precedence over AllowedOrigins.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowedOrigins,omitempty" json:"allowedOrigins,omitempty"`
	PolicyExpression string   `yaml:"policyExpression,omitempty" json:"policyExpression,omitempty"`
	AllowHeaders     []string `yaml:"allowHeaders,omitempty" json:"allowHeaders,omitempty"`
	PreflightMaxAge  Duration `yaml:"preflightMaxAge" json:"preflightMaxAge"`
}

// LoggingConfig holds the logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

// LogConfig converts to the observability logging configuration.
func (c LoggingConfig) LogConfig() observability.LogConfig {
	return observability.LogConfig{
		Level:  c.Level,
		Format: c.Format,
		Output: c.Output,
	}
}

// MetricsConfig holds the Prometheus metrics settings.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace"`
}

// TracingConfig holds the OpenTelemetry tracing settings.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	ServiceName  string  `yaml:"serviceName" json:"serviceName"`
	OTLPEndpoint string  `yaml:"otlpEndpoint" json:"otlpEndpoint"`
	SamplingRate float64 `yaml:"samplingRate" json:"samplingRate"`
	Insecure     bool    `yaml:"insecure" json:"insecure"`
}

// TracerConfig converts to the observability tracer configuration.
func (c TracingConfig) TracerConfig() observability.TracerConfig {
	return observability.TracerConfig{
		ServiceName:  c.ServiceName,
		OTLPEndpoint: c.OTLPEndpoint,
		SamplingRate: c.SamplingRate,
		Enabled:      c.Enabled,
		Insecure:     c.Insecure,
	}
}

// DefaultConfig returns the configuration used when a setting is absent
// from the file.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			IdleTimeout:     Duration(120 * time.Second),
			ShutdownTimeout: Duration(30 * time.Second),
			MaxBodyBytes:    4 << 20,
			Admission: AdmissionConfig{
				MaxInFlight:  256,
				QueueTimeout: Duration(5 * time.Second),
			},
		},
		CORS: CORSConfig{
			PreflightMaxAge: Duration(24 * time.Hour),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "avrouter",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			ServiceName:  "avrouter",
			SamplingRate: 1.0,
		},
	}
}
