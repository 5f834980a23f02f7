package crawler

import "errors"

var (
	// ErrNoEntity is returned when a run is requested without an entity.
	ErrNoEntity = errors.New("no entity selected")

	// ErrNoChains is returned when a run is requested without chains.
	ErrNoChains = errors.New("no chains selected")

	// ErrInvalidPageSize is returned when the page size is not positive.
	ErrInvalidPageSize = errors.New("page size must be positive")

	// ErrInvalidPageCount is returned when the page count is not positive.
	ErrInvalidPageCount = errors.New("page count must be positive")

	// ErrNoAPIKey is returned when a run is requested without credentials.
	ErrNoAPIKey = errors.New("API key is required")

	// ErrPageTimeout marks a page request that hit its per-page deadline.
	ErrPageTimeout = errors.New("page request timed out")
)
