package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nao1215/policyscan/internal/model"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".policyscan"

// Environment variables read for the model backend. They override the file.
const (
	EnvModelEndpoint = "POLICYSCAN_MODEL_ENDPOINT"
	EnvModelName     = "POLICYSCAN_MODEL_NAME"
	EnvModelAPIKey   = "POLICYSCAN_MODEL_API_KEY" //nolint:gosec // variable name, not a credential
)

// File represents the structure of the .policyscan configuration file.
type File struct {
	// KnownURLs maps domains to policy URLs that discovery should use
	// directly. They extend the built-in table.
	KnownURLs map[string]string `yaml:"knownUrls,omitempty"`

	// Rules overrides the built-in keyword tables. Omitted tables keep
	// their defaults.
	Rules *model.RuleSet `yaml:"rules,omitempty"`

	// Platforms adds to or replaces the built-in platform profiles.
	Platforms []model.Platform `yaml:"platforms,omitempty"`

	Model ModelConfig `yaml:"model,omitempty"`
}

// NewFile returns an empty File.
func NewFile() *File {
	return &File{KnownURLs: make(map[string]string)}
}

// Validate checks rule tables and platform entries.
func (f *File) Validate() error {
	if f.Rules != nil {
		if err := f.Rules.Validate(); err != nil {
			return err
		}
	}
	for i, p := range f.Platforms {
		if strings.TrimSpace(p.Profile.Name) == "" {
			return fmt.Errorf("%w: entry %d has no name", ErrInvalidPlatform, i)
		}
	}
	return nil
}

// LoadConfigFile loads and validates a YAML configuration file.
// It returns ErrConfigNotFound when the file does not exist.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cf := NewFile()
	if err := yaml.Unmarshal(data, cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cf.KnownURLs == nil {
		cf.KnownURLs = make(map[string]string)
	}
	if err := cf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .policyscan in the current directory
// 3. Look for .policyscan in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// Load finds and parses the configuration file. An explicit path that does
// not exist is an error; a missing default file yields an empty File.
func Load(configPath string) (*File, error) {
	path := FindConfigFile(configPath)
	if path == "" {
		if configPath != "" {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return NewFile(), nil
	}
	return LoadConfigFile(path)
}

// LoadDotEnv loads .env files into the process environment. Variables that
// are already set win. Missing files are skipped; without arguments the
// current directory and XDGConfigDir are tried.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env", filepath.Join(XDGConfigDir(), ".env")}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides model settings with POLICYSCAN_MODEL_* variables.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvModelEndpoint)); v != "" {
		c.Model.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvModelName)); v != "" {
		c.Model.Name = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvModelAPIKey)); v != "" {
		c.Model.APIKey = v
	}
}
