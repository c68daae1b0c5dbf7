package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/leslieo2/agent-service/internal/config"
	"github.com/leslieo2/agent-service/internal/constants"
	"github.com/leslieo2/agent-service/internal/hotreload"
	"github.com/leslieo2/agent-service/internal/server"
)

func main() {
	flags := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	flags.Usage = func() { printUsage(flags) }

	configFile := flags.String("config", "", "Path to configuration file (YAML or JSON)")
	host := flags.String("host", constants.DefaultHost, "Host interface to bind")
	port := flags.String("port", constants.DefaultPort, "Port to serve the health endpoint on")
	serviceName := flags.String("service-name", config.DefaultServiceConfig().Name, "Service name reported by /health")

	// Server configuration
	readTimeout := flags.Duration("read-timeout", constants.ServerReadTimeout, "HTTP server read timeout")
	writeTimeout := flags.Duration("write-timeout", constants.ServerWriteTimeout, "HTTP server write timeout")
	idleTimeout := flags.Duration("idle-timeout", constants.ServerIdleTimeout, "HTTP server idle timeout")
	maxRequestSize := flags.Int64("max-request-size", constants.ServerMaxRequestSize, "Maximum readable request body in bytes")
	shutdownTimeout := flags.Duration("shutdown-timeout", constants.ServerShutdownTimeout, "Graceful shutdown timeout")

	// Observability
	logLevel := flags.String("log-level", "info", "Log level: debug, info, warn, error")
	logFormat := flags.String("log-format", "json", "Log format: json, console")
	tracingEnabled := flags.Bool("tracing-enabled", false, "Export OpenTelemetry spans to stdout")

	// Hot reload flags
	hotReload := flags.Bool("hot-reload", false, "Reload the log level when the config file changes")
	hotReloadDebounce := flags.Duration("hot-reload-debounce", constants.HotReloadDebounceDelay, "Debounce time for hot reload events")

	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}

	// Only explicitly set flags override env and file values
	cliFlags := &config.CLIFlags{}
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "host":
			cliFlags.Host = host
		case "port":
			cliFlags.Port = port
		case "service-name":
			cliFlags.ServiceName = serviceName
		case "read-timeout":
			cliFlags.ReadTimeout = readTimeout
		case "write-timeout":
			cliFlags.WriteTimeout = writeTimeout
		case "idle-timeout":
			cliFlags.IdleTimeout = idleTimeout
		case "max-request-size":
			cliFlags.MaxRequestSize = maxRequestSize
		case "shutdown-timeout":
			cliFlags.ShutdownTimeout = shutdownTimeout
		case "log-level":
			cliFlags.LogLevel = logLevel
		case "log-format":
			cliFlags.LogFormat = logFormat
		case "tracing-enabled":
			cliFlags.TracingEnabled = tracingEnabled
		case "hot-reload":
			cliFlags.HotReload = hotReload
		case "hot-reload-debounce":
			cliFlags.HotReloadDebounce = hotReloadDebounce
		}
	})

	// Load configuration with precedence (CLI > Env > File > Defaults)
	cfg, err := config.LoadConfig(*configFile, cliFlags)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	logger := srv.Logger()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.HotReload.Enabled {
		if *configFile == "" {
			logger.Warn("Hot reload requested without a config file, ignoring")
		} else {
			reloader, err := hotreload.NewLevelReloader(*configFile, cfg.HotReload.Debounce, logger, config.LoadLogLevel, logger.Logger)
			if err != nil {
				logger.Fatal("Failed to start hot reload", zap.Error(err))
			}
			go reloader.Run(ctx)
		}
	}

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}
}

// printUsage prints the usage information
func printUsage(flags *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Serves GET %s on %s:%s by default.\n\n", constants.PathHealth, constants.DefaultHost, constants.DefaultPort)
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flags.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
	fmt.Fprintf(os.Stderr, "  %s, %s, %s\n", constants.EnvHost, constants.EnvPort, constants.EnvServiceName)
	fmt.Fprintf(os.Stderr, "  %s, %s, %s\n", constants.EnvReadTimeout, constants.EnvWriteTimeout, constants.EnvIdleTimeout)
	fmt.Fprintf(os.Stderr, "  %s, %s\n", constants.EnvMaxRequestSize, constants.EnvShutdownTimeout)
	fmt.Fprintf(os.Stderr, "  %s, %s, %s\n", constants.EnvLogLevel, constants.EnvLogFormat, constants.EnvTracingEnabled)
	fmt.Fprintf(os.Stderr, "  %s, %s\n", constants.EnvHotReload, constants.EnvHotReloadDebounce)
	fmt.Fprintf(os.Stderr, "\nExample usage:\n")
	fmt.Fprintf(os.Stderr, "  %s --port 8001 --service-name agent_service\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s --config ./agent-service.yaml --hot-reload\n", os.Args[0])
}
