package config

import (
	"fmt"
	"strings"

	"github.com/vyrodovalexey/avrouter/internal/util"
)

// ValidationError represents a single configuration validation error.
type ValidationError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// HasErrors reports whether any validation errors were collected.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validate checks every section of the configuration and returns all
// problems found, not just the first.
func (c *Config) Validate() error {
	v := &validator{}

	if c == nil {
		v.addError("", "configuration is nil")
		return v.errors
	}

	v.validateServer(&c.Server)
	v.validateCORS(&c.CORS)
	v.validateLogging(&c.Logging)
	v.validateMetrics(&c.Metrics)
	v.validateTracing(&c.Tracing)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

type validator struct {
	errors ValidationErrors
}

func (v *validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: message})
}

func (v *validator) validateServer(server *ServerConfig) {
	if err := util.ValidatePort(server.Port); err != nil {
		v.addError("server.port", err.Error())
	}

	timeouts := []struct {
		path  string
		value Duration
	}{
		{"server.readTimeout", server.ReadTimeout},
		{"server.writeTimeout", server.WriteTimeout},
		{"server.idleTimeout", server.IdleTimeout},
		{"server.shutdownTimeout", server.ShutdownTimeout},
	}
	for _, timeout := range timeouts {
		if err := util.ValidatePositiveDuration(timeout.value.Duration()); err != nil {
			v.addError(timeout.path, err.Error())
		}
	}

	if server.MaxBodyBytes <= 0 {
		v.addError("server.maxBodyBytes", "must be positive")
	}
	if server.Admission.MaxInFlight <= 0 {
		v.addError("server.admission.maxInFlight", "must be positive")
	}
	if err := util.ValidatePositiveDuration(server.Admission.QueueTimeout.Duration()); err != nil {
		v.addError("server.admission.queueTimeout", err.Error())
	}
}

func (v *validator) validateCORS(cors *CORSConfig) {
	for i, origin := range cors.AllowedOrigins {
		if strings.TrimSpace(origin) == "" {
			v.addError(fmt.Sprintf("cors.allowedOrigins[%d]", i), "origin cannot be empty")
		}
	}
	for i, name := range cors.AllowHeaders {
		if err := util.ValidateHeaderName(name); err != nil {
			v.addError(fmt.Sprintf("cors.allowHeaders[%d]", i), err.Error())
		}
	}
	if cors.PreflightMaxAge < 0 {
		v.addError("cors.preflightMaxAge", "cannot be negative")
	}
}

func (v *validator) validateLogging(logging *LoggingConfig) {
	switch logging.Level {
	case "debug", "info", "warn", "error":
	default:
		v.addError("logging.level", fmt.Sprintf("unknown level %q", logging.Level))
	}

	switch logging.Format {
	case "json", "console":
	default:
		v.addError("logging.format", fmt.Sprintf("unknown format %q", logging.Format))
	}

	if err := util.ValidateNonEmpty(logging.Output, "output"); err != nil {
		v.addError("logging.output", err.Error())
	}
}

func (v *validator) validateMetrics(metrics *MetricsConfig) {
	if !metrics.Enabled {
		return
	}
	if err := util.ValidateNonEmpty(metrics.Namespace, "namespace"); err != nil {
		v.addError("metrics.namespace", err.Error())
	}
}

func (v *validator) validateTracing(tracing *TracingConfig) {
	if err := util.ValidateRatio(tracing.SamplingRate); err != nil {
		v.addError("tracing.samplingRate", err.Error())
	}
	if !tracing.Enabled {
		return
	}
	if err := util.ValidateNonEmpty(tracing.OTLPEndpoint, "otlpEndpoint"); err != nil {
		v.addError("tracing.otlpEndpoint", err.Error())
	}
	if err := util.ValidateNonEmpty(tracing.ServiceName, "serviceName"); err != nil {
		v.addError("tracing.serviceName", err.Error())
	}
}
