// Package config provides configuration types and loading for the
// router process.
//
// This package defines the configuration model, YAML loading with
// environment variable substitution, validation, and file watching for
// hot-reload of the origin policy.
//
// # Features
//
//   - YAML configuration file loading with strict field checking
//   - Environment variable substitution with ${VAR:-default} syntax
//   - Configuration validation with detailed error reporting
//   - File watching for origin-policy hot-reload
//
// # Configuration Loading
//
// Load and validate configuration from a YAML file:
//
//	cfg, err := config.Load("router.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
// # File Watching
//
// Watch for configuration changes:
//
//	watcher, err := config.NewWatcher(configPath, func(cfg *config.Config) {
//	    // Rebuild and swap the origin policy.
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	watcher.Start(ctx)
//
// Route tables are frozen at startup, so only the origin policy is
// hot-swappable; every other change requires a restart.
package config
