package arkham

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/nao1215/hotwalletscan/internal/model"
	"github.com/nao1215/hotwalletscan/internal/transport"
)

const (
	// DefaultBaseURL is the public API endpoint.
	DefaultBaseURL = "https://api.arkm.com"

	// DefaultSearchCacheSize is the number of search queries kept in memory.
	DefaultSearchCacheSize = 128

	// maxBodySize caps the size of a response body read into memory.
	maxBodySize = 32 * 1024 * 1024

	// maxErrorBody caps the response body carried by a StatusError.
	maxErrorBody = 512
)

// RequestHook is called after every request with the endpoint path, the
// HTTP status (0 on transport failure), the duration and the error.
type RequestHook func(endpoint string, status int, elapsed time.Duration, err error)

// Client talks to the intelligence API.
// A Client is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	apiKey  string
	sender  transport.Sender
	logger  *slog.Logger

	// searchCache maps a case-folded query to its results.
	searchCache *lru.Cache[string, []model.Entity]

	hook RequestHook
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the default API key.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithSender sets the transport used for requests.
func WithSender(s transport.Sender) Option {
	return func(c *Client) {
		c.sender = s
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRequestHook registers a hook called after every request.
func WithRequestHook(h RequestHook) Option {
	return func(c *Client) {
		c.hook = h
	}
}

// WithSearchCacheSize sets the number of cached search queries.
// Zero disables the cache.
func WithSearchCacheSize(n int) Option {
	return func(c *Client) {
		if n <= 0 {
			c.searchCache = nil
			return
		}
		cache, err := lru.New[string, []model.Entity](n)
		if err == nil {
			c.searchCache = cache
		}
	}
}

// NewClient creates a client for the API at baseURL.
// An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBaseURL, baseURL)
	}

	cache, err := lru.New[string, []model.Entity](DefaultSearchCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create search cache: %w", err)
	}

	c := &Client{
		baseURL:     u,
		logger:      slog.Default(),
		searchCache: cache,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.sender == nil {
		d, err := transport.NewDirect()
		if err != nil {
			return nil, err
		}
		c.sender = d
	}

	return c, nil
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// get issues a GET request for path with the given query and returns the body.
// apiKey is sent in the credential header when non-empty.
func (c *Client) get(ctx context.Context, path string, query url.Values, apiKey string) ([]byte, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if apiKey != "" {
		req.Header.Set(transport.CredentialHeader, apiKey)
	}

	start := time.Now()
	resp, err := c.sender.Send(req)
	if err != nil {
		c.observe(path, 0, start, err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.observe(path, resp.StatusCode, start, err)
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StatusError{Code: resp.StatusCode, Body: truncate(strings.TrimSpace(string(body)), maxErrorBody)}
		c.observe(path, resp.StatusCode, start, serr)
		return nil, serr
	}

	c.observe(path, resp.StatusCode, start, nil)
	return body, nil
}

func (c *Client) observe(path string, status int, start time.Time, err error) {
	elapsed := time.Since(start)
	c.logger.Debug("api request",
		"path", path,
		"status", status,
		"elapsed", elapsed,
		"error", err,
	)
	if c.hook != nil {
		c.hook(path, status, elapsed, err)
	}
}

func (c *Client) key(override string) string {
	if override != "" {
		return override
	}
	return c.apiKey
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
