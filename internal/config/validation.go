package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var validLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

var validFormats = map[string]bool{
	"json": true, "console": true,
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error

	if err := c.validateServer(); err != nil {
		errs = append(errs, err)
	}

	if strings.TrimSpace(c.Service.Name) == "" {
		errs = append(errs, errors.New("service.name cannot be empty"))
	}

	if err := c.validateObservability(); err != nil {
		errs = append(errs, err)
	}

	if c.HotReload.Debounce < 0 {
		errs = append(errs, errors.New("hot_reload.debounce must be non-negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	var errs []error

	if c.Server.Host == "" {
		errs = append(errs, errors.New("server.host cannot be empty"))
	}

	if err := validatePort(c.Server.Port, "server.port"); err != nil {
		errs = append(errs, err)
	}

	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}
	if c.Server.IdleTimeout <= 0 {
		errs = append(errs, errors.New("server.idle_timeout must be positive"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	if c.Server.MaxRequestSize <= 0 {
		errs = append(errs, errors.New("server.max_request_size must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// validateObservability validates observability configuration
func (c *Config) validateObservability() error {
	var errs []error

	if err := ValidateLogLevel(c.Observability.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("observability.logging.level: %w", err))
	}

	if !validFormats[strings.ToLower(c.Observability.Logging.Format)] {
		errs = append(errs, errors.New("observability.logging.format must be one of: json, console"))
	}

	if c.Observability.Logging.Output == "" {
		errs = append(errs, errors.New("observability.logging.output cannot be empty"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ValidateLogLevel reports whether level is one of the supported log levels
func ValidateLogLevel(level string) error {
	if !validLevels[strings.ToLower(level)] {
		return fmt.Errorf("invalid level %q, must be one of: debug, info, warn, error", level)
	}
	return nil
}

// validatePort validates a port string
func validatePort(portStr, fieldName string) error {
	if portStr == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("%s must be a valid port number: %w", fieldName, err)
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535", fieldName)
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
