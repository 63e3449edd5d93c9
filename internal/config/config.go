package config

import (
	"encoding/json"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/vango-dev/suspense/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vango-ssr.json"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "VANGO_SSR_"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultRenderTimeout bounds one page render.
	DefaultRenderTimeout = "10s"

	// DefaultExportDir is the default static export directory.
	DefaultExportDir = "dist"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultServiceName is the default OpenTelemetry service name.
	DefaultServiceName = "vango-ssr"
)

// Config represents the complete vango-ssr.json configuration. Every field
// can be overridden by an environment variable named after its path, for
// example VANGO_SSR_SERVER_PORT.
type Config struct {
	// Render contains renderer settings.
	Render RenderConfig `json:"render" envPrefix:"RENDER_"`

	// Server contains HTTP server settings.
	Server ServerConfig `json:"server" envPrefix:"SERVER_"`

	// Export contains static export settings.
	Export ExportConfig `json:"export" envPrefix:"EXPORT_"`

	// Log contains logging settings.
	Log LogConfig `json:"log" envPrefix:"LOG_"`

	// Telemetry contains trace export settings.
	Telemetry TelemetryConfig `json:"telemetry" envPrefix:"TELEMETRY_"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RenderConfig contains renderer settings.
type RenderConfig struct {
	// FallbackFast skips the rest of a boundary's content once it is known
	// to render its fallback.
	FallbackFast bool `json:"fallbackFast,omitempty" env:"FALLBACK_FAST"`

	// Static renders markup without text separators or the root marker.
	Static bool `json:"static,omitempty" env:"STATIC"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" env:"HOST"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" env:"PORT"`

	// RenderTimeout bounds one page render (e.g., "10s").
	RenderTimeout string `json:"renderTimeout,omitempty" env:"RENDER_TIMEOUT"`
}

// ExportConfig contains static export settings.
type ExportConfig struct {
	// Dir is the output directory for disk exports.
	Dir string `json:"dir,omitempty" env:"DIR"`

	// Bucket is the S3 bucket for S3 exports.
	Bucket string `json:"bucket,omitempty" env:"BUCKET"`

	// Prefix is prepended to S3 object keys.
	Prefix string `json:"prefix,omitempty" env:"PREFIX"`

	// Region is the AWS region of the bucket.
	Region string `json:"region,omitempty" env:"REGION"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" env:"LEVEL"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty" env:"FORMAT"`
}

// TelemetryConfig contains trace export settings.
type TelemetryConfig struct {
	// Endpoint is the OTLP/HTTP collector endpoint. Empty disables export.
	Endpoint string `json:"endpoint,omitempty" env:"OTEL_ENDPOINT"`

	// ServiceName is reported as service.name.
	ServiceName string `json:"serviceName,omitempty" env:"SERVICE_NAME"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host:          DefaultHost,
			Port:          DefaultPort,
			RenderTimeout: DefaultRenderTimeout,
		},
		Export: ExportConfig{
			Dir: DefaultExportDir,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			ServiceName: DefaultServiceName,
		},
	}
}

// Load reads vango-ssr.json from dir and applies environment overrides.
// A missing file is not an error: defaults and the environment are used.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := New()
		if err := cfg.applyEnv(); err != nil {
			return nil, err
		}
		cfg.applyDefaults()
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path and applies
// environment overrides.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON")
	}

	cfg.configPath = path
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

// applyEnv overrides fields from VANGO_SSR_* variables.
func (c *Config) applyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return errors.New("E121").Wrap(err)
	}
	return nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	// Server
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.RenderTimeout == "" {
		c.Server.RenderTimeout = DefaultRenderTimeout
	}

	// Export
	if c.Export.Dir == "" {
		c.Export.Dir = DefaultExportDir
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Telemetry
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = DefaultServiceName
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E122").
			WithDetail("Port must be between 0 and 65535")
	}
	if d, err := time.ParseDuration(c.Server.RenderTimeout); err != nil || d < 0 {
		return errors.New("E122").
			WithDetail("server.renderTimeout must be a non-negative duration such as \"10s\"")
	}
	if _, err := c.LogLevel(); err != nil {
		return errors.New("E122").
			WithDetail("log.level must be one of debug, info, warn, error").
			Wrap(err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("E122").
			WithDetail("log.format must be \"text\" or \"json\"")
	}
	if c.Export.Bucket != "" && c.Export.Region == "" {
		return errors.New("E122").
			WithDetail("export.region is required when export.bucket is set")
	}
	return nil
}

// Address returns the listen address of the server.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// RenderTimeout returns the parsed render timeout, or zero if it is invalid.
func (c *Config) RenderTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.RenderTimeout)
	if err != nil {
		return 0
	}
	return d
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.Log.Level))
	return level, err
}

// ExportPath returns the absolute path to the export directory.
func (c *Config) ExportPath() string {
	if filepath.IsAbs(c.Export.Dir) {
		return c.Export.Dir
	}
	return filepath.Join(c.Dir(), c.Export.Dir)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}
