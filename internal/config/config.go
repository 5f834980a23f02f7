package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/hotwalletscan/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "hotwalletscan"

	// DefaultBaseURL is the intelligence API endpoint.
	DefaultBaseURL = "https://api.arkm.com"

	// DefaultPageSize is the number of transfers requested per page.
	DefaultPageSize = 500

	// MaxPageSize is the largest page size the API accepts.
	MaxPageSize = 10000

	// DefaultPageCount is the number of pages fetched per chain.
	DefaultPageCount = 5

	// DefaultChainConcurrency is the number of chains crawled at once.
	DefaultChainConcurrency = 3

	// DefaultPageDelay is the pause between two pages of one chain.
	// The API rate-limits aggressively; one second keeps a three chain run
	// under its per-key budget.
	DefaultPageDelay = 1 * time.Second

	// DefaultPageTimeout bounds a single page request.
	DefaultPageTimeout = 15 * time.Second

	// DefaultUserAgent identifies hotwalletscan in HTTP requests.
	DefaultUserAgent = "hotwalletscan/1.0 (+https://github.com/nao1215/hotwalletscan)"

	// APIKeyEnv is the environment variable holding the API key.
	APIKeyEnv = "ARKHAM_API_KEY"
)

// Config holds all configuration options for hotwalletscan.
// It is populated from defaults, then the configuration file, then the
// environment, then CLI flags, and passed down explicitly.
type Config struct {
	// APIKey authenticates requests to the intelligence API.
	APIKey string

	// BaseURL is the intelligence API endpoint.
	BaseURL string

	// ForwardURL is an optional forwarding proxy. When set, requests that fail
	// at the network level are retried once through it.
	ForwardURL string

	// SOCKSProxy is an optional SOCKS5 proxy in "host:port" form for direct requests.
	SOCKSProxy string

	// UserAgent is the User-Agent header sent with API requests.
	UserAgent string

	// Chains are the chain names to crawl. Empty means every supported chain.
	Chains []string

	// PageSize is the number of transfers per page.
	PageSize int

	// PageCount is the number of pages fetched per chain.
	PageCount int

	// ChainConcurrency is the number of chains crawled at once.
	ChainConcurrency int

	// PageDelay is the pause between two pages of one chain.
	PageDelay time.Duration

	// PageTimeout bounds a single page request.
	PageTimeout time.Duration

	// RequestsPerSecond caps transfer page requests across all chains. 0 disables the cap.
	RequestsPerSecond float64

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches log output to JSON.
	LogJSON bool

	// ConfigFilePath is an explicit configuration file path.
	// If empty, .hotwalletscan is searched in the current and home directories.
	ConfigFilePath string

	// File is the loaded configuration file, nil when none was found.
	File *File

	// JSONReport selects the JSON report format.
	JSONReport bool

	// MarkdownReport selects the Markdown report format.
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// ExportFile is the CSV export path. Empty disables the export.
	ExportFile string

	// DBDir is the directory of the history database.
	DBDir string

	// SaveToDB records the run in the history database.
	SaveToDB bool

	// MetricsAddr serves Prometheus metrics on this address while scanning.
	MetricsAddr string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BaseURL:          DefaultBaseURL,
		UserAgent:        DefaultUserAgent,
		PageSize:         DefaultPageSize,
		PageCount:        DefaultPageCount,
		ChainConcurrency: DefaultChainConcurrency,
		PageDelay:        DefaultPageDelay,
		PageTimeout:      DefaultPageTimeout,
		DBDir:            XDGDataDir(),
		SaveToDB:         true,
	}
}

// XDGDataDir returns the XDG data directory for hotwalletscan.
// On Linux: ~/.local/share/hotwalletscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for hotwalletscan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ParsedChains returns the configured chains, or every supported chain when
// none were configured.
func (c *Config) ParsedChains() ([]model.Chain, error) {
	if len(c.Chains) == 0 {
		return model.SupportedChains(), nil
	}
	chains, err := model.ParseChains(c.Chains)
	if err != nil {
		return nil, err
	}
	if len(chains) == 0 {
		return model.SupportedChains(), nil
	}
	return chains, nil
}

// Validate checks if the configuration is valid for a scan.
// It returns the first problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrNoAPIKey
	}
	return c.ValidateConnection()
}

// ValidateConnection checks everything except the API key. Commands that do
// not need credentials (health checks) use it directly.
func (c *Config) ValidateConnection() error {
	if !isHTTPURL(c.BaseURL) {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.BaseURL)
	}
	if c.ForwardURL != "" && !isHTTPURL(c.ForwardURL) {
		return fmt.Errorf("%w: %q", ErrInvalidForwardURL, c.ForwardURL)
	}
	if c.PageSize <= 0 || c.PageSize > MaxPageSize {
		return ErrInvalidPageSize
	}
	if c.PageCount <= 0 {
		return ErrInvalidPageCount
	}
	if c.ChainConcurrency <= 0 {
		return ErrInvalidChainConcurrency
	}
	if c.PageDelay < 0 {
		return ErrInvalidPageDelay
	}
	if c.PageTimeout <= 0 {
		return ErrInvalidPageTimeout
	}
	if c.RequestsPerSecond < 0 {
		return ErrInvalidRate
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if _, err := c.ParsedChains(); err != nil {
		return err
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
