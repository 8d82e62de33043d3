// Package config provides configuration management for the research metadata API.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/helixir/research-metadata-api/internal/observability"
)

// EnvPrefix is the prefix of environment variables that override configuration
// keys, e.g. RESEARCHMETA_SERVER_HTTP_PORT for server.http_port.
const EnvPrefix = "RESEARCHMETA"

// Config holds all configuration for the research metadata API.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// PaperSources contains upstream provider settings.
	PaperSources PaperSourcesConfig `mapstructure:"paper_sources"`
	// API contains query parameter defaults and bounds.
	API APIConfig `mapstructure:"api"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8000).
	HTTPPort int `mapstructure:"http_port"`
	// MetricsPort is the metrics server port (default: 9091).
	MetricsPort int `mapstructure:"metrics_port"`
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing the response. It must
	// exceed the upstream timeout or slow providers surface as dropped connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// IdleTimeout is the keep-alive idle timeout.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr).
	Output string `mapstructure:"output"`
	// AddSource adds source file and line to log output.
	AddSource bool `mapstructure:"add_source"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for metrics endpoint.
	Path string `mapstructure:"path"`
	// Namespace prefixes every metric name.
	Namespace string `mapstructure:"namespace"`
}

// PaperSourcesConfig holds settings shared by the providers and per provider.
type PaperSourcesConfig struct {
	// ContactEmail is sent to providers for their polite pools.
	ContactEmail string `mapstructure:"contact_email"`
	// UserAgent is the product token of the outbound User-Agent header.
	UserAgent string `mapstructure:"user_agent"`
	// Concurrent queries both providers at once when true.
	Concurrent bool `mapstructure:"concurrent"`
	// OpenAlex contains OpenAlex API settings.
	OpenAlex PaperSourceConfig `mapstructure:"openalex"`
	// Crossref contains Crossref API settings.
	Crossref PaperSourceConfig `mapstructure:"crossref"`
}

// PaperSourceConfig holds configuration for a single provider API.
type PaperSourceConfig struct {
	// BaseURL is the API base URL.
	BaseURL string `mapstructure:"base_url"`
	// Timeout bounds one API call.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is the maximum requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
	// Burst is the token bucket size.
	Burst int `mapstructure:"burst"`
	// MaxPerPage caps the page size of a search request.
	MaxPerPage int `mapstructure:"max_per_page"`
}

// APIConfig holds defaults and bounds for the query parameters.
type APIConfig struct {
	// DefaultLimit is used when limit is omitted.
	DefaultLimit int `mapstructure:"default_limit"`
	// MaxLimit is the largest accepted limit.
	MaxLimit int `mapstructure:"max_limit"`
	// DefaultTop is used when top is omitted.
	DefaultTop int `mapstructure:"default_top"`
	// MaxTop is the largest accepted top.
	MaxTop int `mapstructure:"max_top"`
	// PerYearTop caps the per-year n-gram cutoff.
	PerYearTop int `mapstructure:"per_year_top"`
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// MetricsAddress returns the metrics server address.
func (c *ServerConfig) MetricsAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.MetricsPort)
}

// Load loads configuration from defaults, an optional config.yaml in the
// standard search paths, and environment variables.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file. An empty path searches the
// standard locations and tolerates a missing file; an explicit path must exist.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/research-metadata-api")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// Config file not found is OK, we'll use env vars and defaults
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8000)
	v.SetDefault("server.metrics_port", 9091)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "45s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "research_metadata")

	// Paper sources defaults
	v.SetDefault("paper_sources.contact_email", "")
	v.SetDefault("paper_sources.user_agent", "ResearchMetadataAPI/1.0")
	v.SetDefault("paper_sources.concurrent", true)

	v.SetDefault("paper_sources.openalex.base_url", "https://api.openalex.org")
	v.SetDefault("paper_sources.openalex.timeout", "15s")
	v.SetDefault("paper_sources.openalex.rate_limit", 10.0)
	v.SetDefault("paper_sources.openalex.burst", 10)
	v.SetDefault("paper_sources.openalex.max_per_page", 25)

	v.SetDefault("paper_sources.crossref.base_url", "https://api.crossref.org")
	v.SetDefault("paper_sources.crossref.timeout", "15s")
	v.SetDefault("paper_sources.crossref.rate_limit", 10.0)
	v.SetDefault("paper_sources.crossref.burst", 5)
	v.SetDefault("paper_sources.crossref.max_per_page", 25)

	// API defaults
	v.SetDefault("api.default_limit", 20)
	v.SetDefault("api.max_limit", 50)
	v.SetDefault("api.default_top", 10)
	v.SetDefault("api.max_top", 50)
	v.SetDefault("api.per_year_top", 5)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	// Validate server ports
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}
	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.Server.MetricsPort)
	}
	if c.Metrics.Enabled && c.Server.MetricsPort == c.Server.HTTPPort {
		return fmt.Errorf("metrics port must differ from HTTP port: %d", c.Server.MetricsPort)
	}

	// Validate log level
	if !observability.ValidLogLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with '/': %q", c.Metrics.Path)
	}

	// Validate providers
	for name, src := range map[string]PaperSourceConfig{
		"openalex": c.PaperSources.OpenAlex,
		"crossref": c.PaperSources.Crossref,
	} {
		if err := src.validate(name); err != nil {
			return err
		}
	}

	// Validate API bounds
	if c.API.MaxLimit <= 0 {
		return fmt.Errorf("api max_limit must be positive")
	}
	if c.API.DefaultLimit <= 0 || c.API.DefaultLimit > c.API.MaxLimit {
		return fmt.Errorf("api default_limit must be in [1, %d]: %d", c.API.MaxLimit, c.API.DefaultLimit)
	}
	if c.API.MaxTop <= 0 {
		return fmt.Errorf("api max_top must be positive")
	}
	if c.API.DefaultTop <= 0 || c.API.DefaultTop > c.API.MaxTop {
		return fmt.Errorf("api default_top must be in [1, %d]: %d", c.API.MaxTop, c.API.DefaultTop)
	}
	if c.API.PerYearTop <= 0 {
		return fmt.Errorf("api per_year_top must be positive")
	}

	return nil
}

func (c PaperSourceConfig) validate(name string) error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("paper_sources.%s.base_url must be an absolute URL: %q", name, c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("paper_sources.%s.timeout must be positive", name)
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("paper_sources.%s.rate_limit must be positive", name)
	}
	if c.Burst <= 0 {
		return fmt.Errorf("paper_sources.%s.burst must be positive", name)
	}
	if c.MaxPerPage <= 0 {
		return fmt.Errorf("paper_sources.%s.max_per_page must be positive", name)
	}
	return nil
}
