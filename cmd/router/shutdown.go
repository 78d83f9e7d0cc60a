package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vyrodovalexey/avrouter/internal/config"
	"github.com/vyrodovalexey/avrouter/internal/observability"
)

// runRouter starts the server and blocks until a shutdown signal.
func runRouter(app *application, configPath string, watchConfig bool, logger observability.Logger) {
	ctx := context.Background()

	if err := app.server.Start(ctx); err != nil {
		fatalWithSync(logger, "failed to start server", observability.Error(err))
		return // unreachable in production; allows test to continue
	}

	logger.Info("router started", observability.String("address", app.server.Addr()))

	var watcher *config.Watcher
	if watchConfig {
		watcher = startPolicyWatcher(app, configPath, logger)
	}

	waitForShutdown(app, watcher, logger)
}

// startPolicyWatcher watches the configuration file and hot-swaps the
// origin policy when it changes. Route tables are frozen at startup, so
// the policy is the only setting applied from a reload; everything else
// requires a restart.
func startPolicyWatcher(app *application, configPath string, logger observability.Logger) *config.Watcher {
	watcher, err := config.NewWatcher(configPath, func(newCfg *config.Config) {
		fn, policyErr := buildOriginPolicy(newCfg.CORS)
		if policyErr != nil {
			logger.Error("keeping previous origin policy", observability.Error(policyErr))
			return
		}

		app.policyStore.Swap(fn)
		logger.Info("origin policy reloaded",
			observability.Int("allowed_origins", len(newCfg.CORS.AllowedOrigins)),
			observability.Bool("policy_expression", newCfg.CORS.PolicyExpression != ""),
		)
	}, config.WithWatcherLogger(logger))
	if err != nil {
		logger.Warn("failed to create config watcher", observability.Error(err))
		return nil
	}

	if err := watcher.Start(context.Background()); err != nil {
		logger.Warn("failed to start config watcher", observability.Error(err))
	}

	return watcher
}

// waitForShutdown waits for a shutdown signal and performs graceful
// shutdown.
func waitForShutdown(app *application, watcher *config.Watcher, logger observability.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", observability.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		app.config.Server.ShutdownTimeout.Duration())
	defer cancel()

	if watcher != nil {
		_ = watcher.Stop()
	}

	if err := app.server.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop server gracefully", observability.Error(err))
	}

	if err := app.tracer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown tracer", observability.Error(err))
	}

	logger.Info("router stopped")
}
