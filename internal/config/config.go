package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/uielement/internal/errors"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "uielement.json"

	// DefaultPort is the default serve port.
	DefaultPort = 3000

	// DefaultHost is the default serve host.
	DefaultHost = "localhost"

	// DefaultPage is the page rendered and served when none is given.
	DefaultPage = "index.html"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "uielement"

	// DefaultMaxEffectRunsPerFlush bounds effect runs per flush.
	DefaultMaxEffectRunsPerFlush = 10000
)

// fileNames are the configuration files Load looks for, in order.
var fileNames = []string{ConfigFileName, "uielement.yaml", "uielement.yml"}

// Config represents the complete uielement configuration.
type Config struct {
	// Page is the HTML document rendered by the render and serve commands.
	Page string `json:"page,omitempty" yaml:"page,omitempty"`

	// Serve contains HTTP server configuration.
	Serve ServeConfig `json:"serve,omitempty" yaml:"serve,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty" yaml:"tracing,omitempty"`

	// Reactive contains signal graph limits.
	Reactive ReactiveConfig `json:"reactive,omitempty" yaml:"reactive,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`

	// Fetch contains resource cache configuration.
	Fetch FetchConfig `json:"fetch,omitempty" yaml:"fetch,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServeConfig contains HTTP server settings.
type ServeConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// ShutdownTimeout bounds graceful shutdown (e.g., "5s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled installs the metrics observer and serves /metrics.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled installs the tracing observer.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// TracerName is the tracer name.
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`

	// MinDuration drops spans shorter than this (e.g., "1ms").
	MinDuration string `json:"minDuration,omitempty" yaml:"minDuration,omitempty"`
}

// ReactiveConfig contains signal graph settings.
type ReactiveConfig struct {
	// MaxEffectRunsPerFlush bounds effect runs per flush. Zero disables the
	// bound.
	MaxEffectRunsPerFlush int `json:"maxEffectRunsPerFlush,omitempty" yaml:"maxEffectRunsPerFlush,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// FetchConfig contains resource cache settings.
type FetchConfig struct {
	// Timeout bounds each request (e.g., "10s").
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// S3 enables s3://bucket/key URLs when Region is set. Credentials come
	// from AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY; without them
	// requests are anonymous.
	S3 S3Config `json:"s3,omitempty" yaml:"s3,omitempty"`
}

// S3Config contains object storage settings.
type S3Config struct {
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	PathStyle bool   `json:"pathStyle,omitempty" yaml:"pathStyle,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Page: DefaultPage,
		Serve: ServeConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ShutdownTimeout: "5s",
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultNamespace,
		},
		Reactive: ReactiveConfig{
			MaxEffectRunsPerFlush: DefaultMaxEffectRunsPerFlush,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Fetch: FetchConfig{
			Timeout: "10s",
		},
	}
}

// Find returns the path of the first configuration file in dir, or "" if
// there is none.
func Find(dir string) string {
	for _, name := range fileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Load reads configuration from the specified directory. It looks for
// uielement.json, then uielement.yaml and uielement.yml.
func Load(dir string) (*Config, error) {
	path := Find(dir)
	if path == "" {
		return nil, errors.New("UIE420").
			WithSubject(dir).
			WithDetail("No uielement.json or uielement.yaml found in " + dir)
	}
	return LoadFile(path)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadFile reads configuration from the specified file path. Files ending
// in .yaml or .yml are decoded as YAML, anything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("UIE420").WithSubject(path).Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("UIE420").
			WithSubject(path).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error())
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as YAML when the
// path ends in .yaml or .yml.
func (c *Config) SaveTo(path string) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("UIE420").WithSubject(path).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("UIE420").WithSubject(path).Wrap(err)
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
	if c.Page == "" {
		c.Page = DefaultPage
	}
	if c.Serve.Host == "" {
		c.Serve.Host = DefaultHost
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = DefaultPort
	}
	if c.Serve.ShutdownTimeout == "" {
		c.Serve.ShutdownTimeout = "5s"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultNamespace
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Fetch.Timeout == "" {
		c.Fetch.Timeout = "10s"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	invalid := func(detail string) error {
		return errors.New("UIE421").WithSubject(c.configPath).WithDetail(detail)
	}

	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return invalid("serve.port must be between 0 and 65535")
	}
	if c.Reactive.MaxEffectRunsPerFlush < 0 {
		return invalid("reactive.maxEffectRunsPerFlush must not be negative")
	}
	if _, err := c.LogLevel(); err != nil {
		return invalid("log.level must be one of debug, info, warn, error")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return invalid("log.format must be text or json")
	}
	for name, d := range map[string]string{
		"serve.shutdownTimeout": c.Serve.ShutdownTimeout,
		"tracing.minDuration":   c.Tracing.MinDuration,
		"fetch.timeout":         c.Fetch.Timeout,
	} {
		if _, err := parseDuration(d); err != nil {
			return invalid(name + " is not a duration: " + err.Error())
		}
	}
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err == nil && d < 0 {
		return 0, errors.Newf(errors.CategoryConfig, "negative duration %s", s)
	}
	return d, err
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return c.Serve.Host + ":" + strconv.Itoa(c.Serve.Port)
}

// PagePath returns the page path, resolved against the config directory.
func (c *Config) PagePath() string {
	if filepath.IsAbs(c.Page) {
		return c.Page
	}
	return filepath.Join(c.Dir(), c.Page)
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.Log.Level))
	return level, err
}

// ShutdownTimeout returns Serve.ShutdownTimeout, or zero when invalid.
func (c *Config) ShutdownTimeout() time.Duration {
	d, _ := parseDuration(c.Serve.ShutdownTimeout)
	return d
}

// TracingMinDuration returns Tracing.MinDuration, or zero when invalid.
func (c *Config) TracingMinDuration() time.Duration {
	d, _ := parseDuration(c.Tracing.MinDuration)
	return d
}

// FetchTimeout returns Fetch.Timeout, or zero when invalid.
func (c *Config) FetchTimeout() time.Duration {
	d, _ := parseDuration(c.Fetch.Timeout)
	return d
}

// FindProjectRoot walks up directories to find the directory holding a
// configuration file.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Find(dir) != "" {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("UIE420").
				WithDetail("No uielement.json found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'uielement init' to write a default configuration")
		}
		dir = parent
	}
}
