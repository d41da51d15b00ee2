// Package config provides configuration loading for geoextract.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/geoextract/internal/pipeline"
)

// Default values for the server section.
const (
	DefaultHost            = "127.0.0.1"
	DefaultHTTPPort        = 5000
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxUploadBytes  = 1 << 20
)

// Config holds the complete geoextract configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server" json:"server"`
	Locations LocationsConfig `koanf:"locations" json:"locations"`
	Pipeline  pipeline.Config `koanf:"pipeline" json:"pipeline"`
	Logging   LoggingConfig   `koanf:"logging" json:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry" json:"telemetry"`
}

// ServerConfig holds HTTP server configuration.
//
// RateLimit is in requests per second per client IP; zero disables limiting.
type ServerConfig struct {
	Host            string   `koanf:"host" json:"host"`
	HTTPPort        int      `koanf:"http_port" json:"http_port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout" json:"shutdown_timeout"`
	MaxUploadBytes  int64    `koanf:"max_upload_bytes" json:"max_upload_bytes"`
	RateLimit       float64  `koanf:"rate_limit" json:"rate_limit"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.HTTPPort)
}

// LocationsConfig points at the location file. Watch enables hot reload.
type LocationsConfig struct {
	Path  string `koanf:"path" json:"path"`
	Watch bool   `koanf:"watch" json:"watch"`
}

// LoggingConfig holds the subset of logging settings exposed to users.
type LoggingConfig struct {
	Level  string `koanf:"level" json:"level"`
	Format string `koanf:"format" json:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled    bool    `koanf:"enabled" json:"enabled"`
	Endpoint   string  `koanf:"endpoint" json:"endpoint"`
	Protocol   string  `koanf:"protocol" json:"protocol"`
	Insecure   bool    `koanf:"insecure" json:"insecure"`
	SampleRate float64 `koanf:"sample_rate" json:"sample_rate"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			HTTPPort:        DefaultHTTPPort,
			ShutdownTimeout: Duration(DefaultShutdownTimeout),
			MaxUploadBytes:  DefaultMaxUploadBytes,
		},
		Pipeline: pipeline.DefaultConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			Endpoint:   "localhost:4317",
			Protocol:   "grpc",
			Insecure:   true,
			SampleRate: 1.0,
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.HTTPPort < 1 || c.Server.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("server.http_port must be 1-65535, got %d", c.Server.HTTPPort))
	}
	if c.Server.ShutdownTimeout.Duration() <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_upload_bytes must be positive, got %d", c.Server.MaxUploadBytes))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit must be >= 0, got %v", c.Server.RateLimit))
	}
	if c.Locations.Watch && c.Locations.Path == "" {
		errs = append(errs, errors.New("locations.watch requires locations.path"))
	}
	if err := c.Pipeline.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("pipeline: %w", err))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}
	if c.Telemetry.Enabled {
		if c.Telemetry.Endpoint == "" {
			errs = append(errs, errors.New("telemetry.endpoint is required when telemetry is enabled"))
		}
		if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
			errs = append(errs, fmt.Errorf("telemetry.sample_rate must be between 0 and 1, got %v", c.Telemetry.SampleRate))
		}
	}

	return errors.Join(errs...)
}
