// Package config provides configuration management for depotkit. It handles
// loading, validating, and saving application settings and the configured
// repository list. Configuration lives in a YAML file with sensible defaults
// applied for anything the file leaves out.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/depotkit/depotkit/pkg/errors"
	"github.com/depotkit/depotkit/pkg/fsutil"
	"github.com/depotkit/depotkit/pkg/model"
)

// Config represents the application configuration.
type Config struct {
	// Repository configuration
	Repositories []*RepositoryConfig `yaml:"repositories"`

	// General settings
	Settings Settings `yaml:"settings"`
}

// RepositoryConfig represents a single GitHub repository entry.
type RepositoryConfig struct {
	Name     string `yaml:"name"`               // owner/repo
	Kind     string `yaml:"kind"`               // keysource or passthrough
	Category string `yaml:"category,omitempty"` // encrypted or decrypted
	Enabled  bool   `yaml:"enabled"`
}

// HookConfig holds paths to user hook scripts.
type HookConfig struct {
	PostDownload string `yaml:"post_download,omitempty"`
	PostPackage  string `yaml:"post_package,omitempty"`
}

// Settings represents general application settings.
type Settings struct {
	// Output settings
	OutputDir string `yaml:"output_dir,omitempty"` // root for final archives

	// GitHub API settings
	GitHubToken string `yaml:"github_token,omitempty"`
	APIBaseURL  string `yaml:"api_base_url,omitempty"` // override for testing/proxies

	// Download behavior
	StrictMode     bool          `yaml:"strict_mode"`
	HTTPTimeout    time.Duration `yaml:"http_timeout"`
	ArchiveTimeout time.Duration `yaml:"archive_timeout"` // whole-zipball fetches

	// Output settings
	LogLevel string `yaml:"log_level"` // error, warn, info, debug

	// Hook scripts
	Hooks HookConfig `yaml:"hooks,omitempty"`
}

// Default configuration values.
const (
	// DefaultOutputDir is where finished archives land.
	DefaultOutputDir = "Games"

	// DefaultHTTPTimeout is the default timeout for API and mirror requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultArchiveTimeout is the default timeout for whole-zipball fetches.
	DefaultArchiveTimeout = 10 * time.Minute

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Repositories: []*RepositoryConfig{},
		Settings: Settings{
			OutputDir:      DefaultOutputDir,
			StrictMode:     true,
			HTTPTimeout:    DefaultHTTPTimeout,
			ArchiveTimeout: DefaultArchiveTimeout,
			LogLevel:       "info",
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the
// default configuration.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	return &config, nil
}

// SaveConfig saves configuration to a file.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	// Write to a temp file first and rename into place. The token lives in
	// this file, so it is created owner-readable.
	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeSecure)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrapf(err, "failed to replace config file %s", path)
	}

	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return data, nil
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.OutputDir == "" {
		c.Settings.OutputDir = defaults.Settings.OutputDir
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.ArchiveTimeout == 0 {
		c.Settings.ArchiveTimeout = defaults.Settings.ArchiveTimeout
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	for _, repo := range c.Repositories {
		if repo.Kind == "" {
			repo.Kind = string(model.KindKeySource)
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validateRepositories(c.Repositories); err != nil {
		return err
	}
	return validateSettings(c.Settings)
}

func validateRepositories(repos []*RepositoryConfig) error {
	repoNames := make(map[string]bool)
	for i, repo := range repos {
		if repo.Name == "" {
			return fmt.Errorf("repository %d: name cannot be empty", i)
		}
		if repoNames[repo.Name] {
			return fmt.Errorf("repository %q: duplicate repository name", repo.Name)
		}
		repoNames[repo.Name] = true

		if err := repo.toDescriptor().Validate(); err != nil {
			return err
		}
	}
	return nil
}

func validateSettings(s Settings) error {
	if s.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout cannot be negative")
	}
	if s.ArchiveTimeout < 0 {
		return fmt.Errorf("archive_timeout cannot be negative")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return fmt.Errorf("invalid log_level %q, must be one of: debug, info, warn, error", s.LogLevel)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	return filepath.Join(configDir, "depotkit", "config.yaml"), nil
}

// AddRepository adds a repository to the configuration. Adding a name that
// already exists updates the entry in place.
func (c *Config) AddRepository(name, kind, category string, enabled bool) error {
	entry := &RepositoryConfig{Name: name, Kind: kind, Category: category, Enabled: enabled}
	if entry.Kind == "" {
		entry.Kind = string(model.KindKeySource)
	}
	if err := entry.toDescriptor().Validate(); err != nil {
		return err
	}

	for i, repo := range c.Repositories {
		if repo.Name == name {
			c.Repositories[i] = entry
			return nil
		}
	}
	c.Repositories = append(c.Repositories, entry)
	return nil
}

// RemoveRepository removes a repository from the configuration.
func (c *Config) RemoveRepository(name string) bool {
	for i, repo := range c.Repositories {
		if repo.Name == name {
			c.Repositories = append(c.Repositories[:i], c.Repositories[i+1:]...)
			return true
		}
	}
	return false
}

// GetRepository gets a repository configuration by name.
func (c *Config) GetRepository(name string) *RepositoryConfig {
	for _, repo := range c.Repositories {
		if repo.Name == name {
			return repo
		}
	}
	return nil
}

// EnableRepository enables or disables a repository.
func (c *Config) EnableRepository(name string, enabled bool) bool {
	for _, repo := range c.Repositories {
		if repo.Name == name {
			repo.Enabled = enabled
			return true
		}
	}
	return false
}

func (rc *RepositoryConfig) toDescriptor() model.RepositoryDescriptor {
	return model.RepositoryDescriptor{
		Name:     rc.Name,
		Kind:     model.RepositoryKind(rc.Kind),
		Category: model.RepositoryCategory(rc.Category),
		Selected: rc.Enabled,
	}
}

// ToDescriptors converts the configured repositories into descriptors in
// configuration order. Order matters: it is the failover order.
func (c *Config) ToDescriptors() []model.RepositoryDescriptor {
	descriptors := make([]model.RepositoryDescriptor, 0, len(c.Repositories))
	for _, repo := range c.Repositories {
		descriptors = append(descriptors, repo.toDescriptor())
	}
	return descriptors
}
