package server

import (
	"time"
)

// Config holds the listener settings.
type Config struct {
	Host              string        `env:"HOST"` // default: "127.0.0.1"
	Port              int           `env:"PORT"` // default: 8080
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT"`

	// ShutdownTimeout bounds how long in-flight builds may finish
	// after a stop signal.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"` // default: 5m
}

func (c *Config) host() string {
	if c.Host == "" {
		return "127.0.0.1"
	}
	return c.Host
}

func (c *Config) port() int {
	if c.Port == 0 {
		return 8080
	}
	return c.Port
}

// ShutdownTimeoutOrDefault returns ShutdownTimeout or its default.
func (c *Config) ShutdownTimeoutOrDefault() time.Duration {
	if c.ShutdownTimeout <= 0 {
		return 5 * time.Minute
	}
	return c.ShutdownTimeout
}
