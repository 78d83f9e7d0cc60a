package main

import (
	"github.com/vyrodovalexey/avrouter/internal/config"
	"github.com/vyrodovalexey/avrouter/internal/dispatch"
	"github.com/vyrodovalexey/avrouter/internal/middleware"
	"github.com/vyrodovalexey/avrouter/internal/observability"
	"github.com/vyrodovalexey/avrouter/internal/policy"
	"github.com/vyrodovalexey/avrouter/internal/router"
	"github.com/vyrodovalexey/avrouter/internal/server"
)

// application holds all application components.
type application struct {
	server      *server.Server
	policyStore *policy.Store
	metrics     *observability.Metrics
	tracer      *observability.Tracer
	pool        *middleware.Pool
	config      *config.Config
}

// initApplication initializes all application components: the route
// table, the dispatcher, the admission pool, and the HTTP server shell.
func initApplication(cfg *config.Config, logger observability.Logger) *application {
	tracer := initTracer(cfg, logger)
	if tracer == nil {
		return nil
	}

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace)
		metrics.SetBuildInfo(version, gitCommit, buildTime)
	}

	originPolicy, err := buildOriginPolicy(cfg.CORS)
	if err != nil {
		fatalWithSync(logger, "invalid origin policy", observability.Error(err))
		return nil // unreachable in production; allows test to continue
	}
	policyStore := policy.NewStore(originPolicy)

	reg := router.NewRegistry()
	if err := registerAPI(reg, newContentAPI()); err != nil {
		fatalWithSync(logger, "failed to register routes", observability.Error(err))
		return nil // unreachable in production; allows test to continue
	}
	reg.Freeze()

	if metrics != nil {
		for verb, count := range reg.CountByVerb() {
			metrics.SetRoutesRegistered(verb, count)
		}
	}

	dispatchOpts := []dispatch.Option{
		dispatch.WithLogger(logger),
		dispatch.WithPolicy(policyStore),
		dispatch.WithPreflightMaxAge(cfg.CORS.PreflightMaxAge.Duration()),
	}
	if metrics != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithMetrics(metrics))
	}
	if len(cfg.CORS.AllowHeaders) > 0 {
		dispatchOpts = append(dispatchOpts, dispatch.WithAllowedHeaders(cfg.CORS.AllowHeaders))
	}
	dispatcher := dispatch.New(reg, dispatchOpts...)

	pool := middleware.NewPool(
		cfg.Server.Admission.MaxInFlight,
		cfg.Server.Admission.QueueTimeout.Duration(),
		middleware.WithPoolLogger(logger),
	)

	serverOpts := []server.Option{
		server.WithLogger(logger),
		server.WithTracer(tracer),
		server.WithPool(pool),
		server.WithBuildInfo(server.BuildInfo{
			Version:   version,
			Commit:    gitCommit,
			BuildTime: buildTime,
		}),
	}
	if metrics != nil {
		serverOpts = append(serverOpts, server.WithMetrics(metrics))
	}

	srv := server.New(cfg.Server, reg, dispatcher, serverOpts...)

	return &application{
		server:      srv,
		policyStore: policyStore,
		metrics:     metrics,
		tracer:      tracer,
		pool:        pool,
		config:      cfg,
	}
}
