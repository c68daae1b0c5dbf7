package constants

import "time"

// Environment variable constants
const (
	EnvHost              = "AGENT_SERVICE_HOST"
	EnvPort              = "AGENT_SERVICE_PORT"
	EnvServiceName       = "AGENT_SERVICE_NAME"
	EnvReadTimeout       = "AGENT_SERVICE_READ_TIMEOUT"
	EnvWriteTimeout      = "AGENT_SERVICE_WRITE_TIMEOUT"
	EnvIdleTimeout       = "AGENT_SERVICE_IDLE_TIMEOUT"
	EnvMaxRequestSize    = "AGENT_SERVICE_MAX_REQUEST_SIZE"
	EnvShutdownTimeout   = "AGENT_SERVICE_SHUTDOWN_TIMEOUT"
	EnvLogLevel          = "AGENT_SERVICE_LOG_LEVEL"
	EnvLogFormat         = "AGENT_SERVICE_LOG_FORMAT"
	EnvTracingEnabled    = "AGENT_SERVICE_TRACING_ENABLED"
	EnvHotReload         = "AGENT_SERVICE_HOT_RELOAD"
	EnvHotReloadDebounce = "AGENT_SERVICE_HOT_RELOAD_DEBOUNCE"
)

// HTTP header constants
const (
	HeaderContentType = "Content-Type"
	HeaderRequestID   = "X-Request-ID"
)

// Content type constants
const (
	ContentTypeJSON = "application/json"
)

// Path constants
const (
	PathHealth = "/health"
)

// Server defaults
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = "8000"
	ServerReadTimeout      = 5 * time.Second
	ServerWriteTimeout     = 10 * time.Second
	ServerIdleTimeout      = 60 * time.Second
	ServerMaxRequestSize   = 1 << 20 // 1MB
	ServerShutdownTimeout  = 15 * time.Second
	ServerMaxHeaderBytes   = 1 << 20
	HotReloadDebounceDelay = 500 * time.Millisecond
)
