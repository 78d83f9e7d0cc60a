package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/vyrodovalexey/avrouter/internal/config"
	"github.com/vyrodovalexey/avrouter/internal/observability"
	"github.com/vyrodovalexey/avrouter/internal/policy"
)

// loadConfig loads and validates the configuration. A missing file at the
// built-in default path starts the router with defaults; a missing file
// at an explicitly requested path is fatal. The second return value
// reports whether the configuration came from a file, which decides
// whether the watcher is started.
func loadConfig(configPath string, logger observability.Logger) (*config.Config, bool) {
	logger.Info("starting avrouter",
		observability.String("version", version),
		observability.String("config", configPath),
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && configPath == defaultConfigPath {
			logger.Warn("configuration file not found, using defaults",
				observability.String("config", configPath))
			return config.DefaultConfig(), false
		}
		fatalWithSync(logger, "failed to load configuration", observability.Error(err))
		return nil, false // unreachable in production; allows test to continue
	}

	if err := cfg.Validate(); err != nil {
		fatalWithSync(logger, "invalid configuration", observability.Error(err))
		return nil, false // unreachable in production; allows test to continue
	}

	logger.Info("configuration loaded",
		observability.String("listen", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)),
		observability.Int("max_in_flight", cfg.Server.Admission.MaxInFlight),
		observability.Int("allowed_origins", len(cfg.CORS.AllowedOrigins)),
		observability.Bool("policy_expression", cfg.CORS.PolicyExpression != ""),
		observability.Bool("metrics", cfg.Metrics.Enabled),
		observability.Bool("tracing", cfg.Tracing.Enabled),
	)

	return cfg, true
}

// initTracer initializes the tracer. When tracing is disabled a no-op
// tracer is returned, so callers never need to branch.
func initTracer(cfg *config.Config, logger observability.Logger) *observability.Tracer {
	tracer, err := observability.NewTracer(cfg.Tracing.TracerConfig())
	if err != nil {
		fatalWithSync(logger, "failed to initialize tracer", observability.Error(err))
		return nil // unreachable in production; allows test to continue
	}

	return tracer
}

// buildOriginPolicy constructs the origin policy from the CORS settings.
// A policy expression takes precedence over the origin allow list; with
// neither configured the returned func is nil and cross-origin requests
// are denied.
func buildOriginPolicy(cfg config.CORSConfig) (policy.Func, error) {
	if cfg.PolicyExpression != "" {
		fn, err := policy.NewCELPolicy(cfg.PolicyExpression)
		if err != nil {
			return nil, fmt.Errorf("compiling policy expression: %w", err)
		}
		return fn, nil
	}

	if len(cfg.AllowedOrigins) > 0 {
		return policy.NewAllowList(cfg.AllowedOrigins).Allow, nil
	}

	return nil, nil
}
