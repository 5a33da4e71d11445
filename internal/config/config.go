package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "policyscan"

	// DefaultTimeout bounds the whole discovery and retrieval of one domain.
	// It covers the root fetch, every probe round and MaxAttempts candidate
	// fetches at DefaultAttemptTimeout each.
	DefaultTimeout = 90 * time.Second

	// DefaultAttemptTimeout bounds a single policy page fetch.
	DefaultAttemptTimeout = 15 * time.Second

	// DefaultBatchSize is the number of domains analyzed concurrently.
	// Higher values are mostly limited by the sites' rate limits.
	DefaultBatchSize = 4

	// DefaultCacheTTL is how long a stored domain analysis is reused.
	DefaultCacheTTL = 24 * time.Hour

	// DefaultMaxBodySize limits how much of a response body is read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultHistoryLimit is the number of rows `history` prints.
	DefaultHistoryLimit = 20

	// DefaultTorStartupTimeout is how long to wait for the embedded Tor
	// daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DefaultModelMaxTokens and DefaultModelTemperature are sent to the
	// model backend when the configuration leaves them unset.
	DefaultModelMaxTokens   = 400
	DefaultModelTemperature = 0.3
)

// ModelConfig selects an optional OpenAI-compatible backend that writes
// the prose parts of an analysis and answers chat questions.
type ModelConfig struct {
	// Endpoint is the base URL, e.g. "https://api.openai.com". Empty
	// disables the backend.
	Endpoint string `yaml:"endpoint,omitempty"`

	// Name is the model identifier sent in each request.
	Name string `yaml:"name,omitempty"`

	// APIKey is read from POLICYSCAN_MODEL_API_KEY only, never from the
	// YAML file.
	APIKey string `yaml:"-"`

	MaxTokens   int     `yaml:"maxTokens,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
}

// Enabled reports whether a backend endpoint is configured.
func (m ModelConfig) Enabled() bool {
	return m.Endpoint != ""
}

// Config holds all options for one CLI invocation. It is built from flags,
// the YAML file and the environment, and passed down explicitly.
type Config struct {
	// Timeout bounds discovery and retrieval of one domain.
	Timeout time.Duration

	// AttemptTimeout bounds a single page fetch.
	AttemptTimeout time.Duration

	// BatchSize is the number of domains analyzed concurrently.
	BatchSize int

	// CacheTTL is how long stored domain analyses are reused. Zero
	// disables caching.
	CacheTTL time.Duration

	// UseCache enables reading and writing the result cache.
	UseCache bool

	// SaveToDB records every analysis in the result store.
	SaveToDB bool

	// DBDir is where the SQLite database lives. Defaults to XDGDataDir.
	DBDir string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// UserAgent overrides the browser-like default when set.
	UserAgent string

	// ConfigFilePath is the --config value. Empty means search for
	// .policyscan in the current and home directories.
	ConfigFilePath string

	// File is the parsed configuration file, never nil after loading.
	File *File

	// Model configures the optional model backend.
	Model ModelConfig

	// JSONReport and MarkdownReport select the output format. They are
	// mutually exclusive; neither means plain text.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile receives the report instead of stdout when set.
	ReportFile string

	// UseTor routes fetches through an embedded Tor daemon.
	UseTor bool

	// TorProxyAddress routes fetches through an existing Tor SOCKS proxy
	// instead of starting one.
	TorProxyAddress string

	// TorStartupTimeout bounds the embedded daemon's bootstrap.
	TorStartupTimeout time.Duration

	// Targets are the domains to analyze.
	Targets []string

	Verbose bool
	LogJSON bool

	// MetricsFile receives Prometheus metrics on exit when set.
	MetricsFile string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:           DefaultTimeout,
		AttemptTimeout:    DefaultAttemptTimeout,
		BatchSize:         DefaultBatchSize,
		CacheTTL:          DefaultCacheTTL,
		UseCache:          true,
		SaveToDB:          true,
		DBDir:             XDGDataDir(),
		MaxBodySize:       DefaultMaxBodySize,
		TorStartupTimeout: DefaultTorStartupTimeout,
		File:              NewFile(),
		Model: ModelConfig{
			MaxTokens:   DefaultModelMaxTokens,
			Temperature: DefaultModelTemperature,
		},
	}
}

// XDGDataDir returns the directory for the result database.
// On Linux: ~/.local/share/policyscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the directory searched for a .env file.
// On Linux: ~/.config/policyscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if c.Timeout <= 0 || c.AttemptTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.AttemptTimeout > c.Timeout {
		return ErrAttemptExceedsTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.CacheTTL < 0 {
		return ErrInvalidCacheTTL
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.UseTor && c.TorProxyAddress != "" {
		return ErrConflictingTorModes
	}
	if c.Model.Enabled() && c.Model.Name == "" {
		return ErrNoModelName
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return ErrInvalidTemperature
	}
	return nil
}

// ApplyFile fills model settings the flags left empty from the file.
// Known URLs, rules and platforms are read from c.File directly.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	c.File = f
	if c.Model.Endpoint == "" {
		c.Model.Endpoint = f.Model.Endpoint
	}
	if c.Model.Name == "" {
		c.Model.Name = f.Model.Name
	}
	if f.Model.MaxTokens > 0 {
		c.Model.MaxTokens = f.Model.MaxTokens
	}
	if f.Model.Temperature > 0 {
		c.Model.Temperature = f.Model.Temperature
	}
}
