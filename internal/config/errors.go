package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoAPIKey is returned when no API key was given by flag, environment
	// or configuration file.
	ErrNoAPIKey = errors.New("no API key: set " + APIKeyEnv + ", use --api-key or add apiKey to the config file")

	// ErrInvalidBaseURL is returned when the API base URL is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be an absolute http or https URL")

	// ErrInvalidForwardURL is returned when the forwarding proxy URL is not an absolute http(s) URL.
	ErrInvalidForwardURL = errors.New("invalid forward URL: must be an absolute http or https URL")

	// ErrInvalidPageSize is returned when the page size is outside 1..MaxPageSize.
	ErrInvalidPageSize = errors.New("invalid page size: must be between 1 and 10000")

	// ErrInvalidPageCount is returned when the page count is not positive.
	ErrInvalidPageCount = errors.New("invalid page count: must be positive")

	// ErrInvalidChainConcurrency is returned when the chain concurrency is not positive.
	ErrInvalidChainConcurrency = errors.New("invalid chain concurrency: must be positive")

	// ErrInvalidPageDelay is returned when the inter-page delay is negative.
	ErrInvalidPageDelay = errors.New("invalid page delay: must be non-negative")

	// ErrInvalidPageTimeout is returned when the per-page timeout is not positive.
	ErrInvalidPageTimeout = errors.New("invalid page timeout: must be positive")

	// ErrInvalidRate is returned when the request rate is negative.
	ErrInvalidRate = errors.New("invalid request rate: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown are given.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
