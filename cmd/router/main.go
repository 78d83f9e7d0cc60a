// Package main is the entry point for the avrouter service.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/vyrodovalexey/avrouter/internal/config"
	"github.com/vyrodovalexey/avrouter/internal/observability"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// defaultConfigPath is used when neither -config nor ROUTER_CONFIG is
// set. A missing file at this path is not fatal; the router starts with
// built-in defaults.
const defaultConfigPath = "configs/router.yaml"

// exitFunc allows tests to intercept os.Exit.
var exitFunc = os.Exit

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	showVersion bool
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		printVersion()
		return
	}

	logger := initLogger(flags)
	defer func() { _ = logger.Sync() }()

	cfg, fromFile := loadConfig(flags.configPath, logger)
	logger = resolveLogger(flags, cfg, logger)

	app := initApplication(cfg, logger)
	if app == nil {
		return // unreachable in production; allows test to continue
	}

	runRouter(app, flags.configPath, fromFile, logger)
}

// parseFlags parses command line flags. The log level and format default
// to the environment and stay empty when unset, so the file settings
// apply unless explicitly overridden.
func parseFlags() cliFlags {
	configPath := flag.String("config", getEnvOrDefault("ROUTER_CONFIG", defaultConfigPath),
		"Path to configuration file")
	logLevel := flag.String("log-level", os.Getenv("ROUTER_LOG_LEVEL"),
		"Log level override (debug, info, warn, error)")
	logFormat := flag.String("log-format", os.Getenv("ROUTER_LOG_FORMAT"),
		"Log format override (json, console)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	return cliFlags{
		configPath:  *configPath,
		logLevel:    *logLevel,
		logFormat:   *logFormat,
		showVersion: *showVersion,
	}
}

// printVersion prints version information and exits.
func printVersion() {
	fmt.Printf("avrouter version %s\n", version)
	fmt.Printf("  Build time: %s\n", buildTime)
	fmt.Printf("  Git commit: %s\n", gitCommit)
}

// initLogger initializes the bootstrap logger from flags. It is replaced
// by resolveLogger once the configuration file has been loaded.
func initLogger(flags cliFlags) observability.Logger {
	logCfg := observability.DefaultLogConfig()
	if flags.logLevel != "" {
		logCfg.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		logCfg.Format = flags.logFormat
	}

	logger, err := observability.NewLogger(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		exitFunc(1)
		return observability.NopLogger() // unreachable in production; allows test to continue
	}

	observability.SetGlobalLogger(logger)
	return logger
}

// resolveLogger rebuilds the logger from the loaded configuration. Flag
// and environment overrides win over the file settings.
func resolveLogger(flags cliFlags, cfg *config.Config, bootstrap observability.Logger) observability.Logger {
	logCfg := cfg.Logging.LogConfig()
	if flags.logLevel != "" {
		logCfg.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		logCfg.Format = flags.logFormat
	}

	logger, err := observability.NewLogger(logCfg)
	if err != nil {
		bootstrap.Warn("failed to apply logging configuration, keeping bootstrap logger",
			observability.Error(err))
		return bootstrap
	}

	observability.SetGlobalLogger(logger)
	return logger
}

// fatalWithSync logs at error level, flushes the logger, and exits. Tests
// replace exitFunc to observe fatal paths.
func fatalWithSync(logger observability.Logger, msg string, fields ...observability.Field) {
	logger.Error(msg, fields...)
	_ = logger.Sync()
	exitFunc(1)
}
