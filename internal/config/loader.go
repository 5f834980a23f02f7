package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".hotwalletscan"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .hotwalletscan configuration file.
type File struct {
	APIKey     string   `yaml:"apiKey,omitempty"`
	BaseURL    string   `yaml:"baseURL,omitempty"`
	ForwardURL string   `yaml:"forwardURL,omitempty"`
	SOCKSProxy string   `yaml:"socksProxy,omitempty"`
	Chains     []string `yaml:"chains,omitempty"`
	PageSize   int      `yaml:"pageSize,omitempty"`
	Pages      int      `yaml:"pages,omitempty"`

	// Entities maps entity IDs to per-entity overrides.
	Entities map[string]Profile `yaml:"entities,omitempty"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cf.Entities == nil {
		cf.Entities = make(map[string]Profile)
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .hotwalletscan in the current directory
// 3. Look for .hotwalletscan in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Apply copies the values set in the file into cfg. Zero values in the file
// leave cfg unchanged.
func (cf *File) Apply(cfg *Config) {
	if cf.APIKey != "" {
		cfg.APIKey = cf.APIKey
	}
	if cf.BaseURL != "" {
		cfg.BaseURL = cf.BaseURL
	}
	if cf.ForwardURL != "" {
		cfg.ForwardURL = cf.ForwardURL
	}
	if cf.SOCKSProxy != "" {
		cfg.SOCKSProxy = cf.SOCKSProxy
	}
	if len(cf.Chains) > 0 {
		cfg.Chains = append([]string(nil), cf.Chains...)
	}
	if cf.PageSize > 0 {
		cfg.PageSize = cf.PageSize
	}
	if cf.Pages > 0 {
		cfg.PageCount = cf.Pages
	}
	cfg.File = cf
}

// Load finds and applies the configuration file to cfg. A missing file is
// not an error unless cfg.ConfigFilePath names it explicitly.
func Load(cfg *Config) error {
	path := FindConfigFile(cfg.ConfigFilePath)
	if path == "" {
		if cfg.ConfigFilePath != "" {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, cfg.ConfigFilePath)
		}
		return nil
	}

	cf, err := LoadConfigFile(path)
	if err != nil {
		return err
	}
	cf.Apply(cfg)
	return nil
}
