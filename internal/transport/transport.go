package transport

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

// Header names used for credentials.
const (
	// CredentialHeader carries the API key on direct requests.
	CredentialHeader = "API-Key"

	// ForwardCredentialHeader carries the API key on requests sent to the
	// forwarding relay.
	ForwardCredentialHeader = "X-Forward-Api-Key"
)

// Sender performs one HTTP request. Cancellation is taken from req.Context().
type Sender interface {
	Send(req *http.Request) (*http.Response, error)
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(req *http.Request) (*http.Response, error)

// Send implements Sender.
func (f SenderFunc) Send(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Direct sends requests straight to their target.
type Direct struct {
	client *http.Client
}

// DirectOption configures a Direct sender.
type DirectOption func(*directConfig)

type directConfig struct {
	client     *http.Client
	socksProxy string
	userAgent  string
}

// WithHTTPClient uses the given client instead of a freshly built one.
func WithHTTPClient(client *http.Client) DirectOption {
	return func(c *directConfig) {
		c.client = client
	}
}

// WithSOCKSProxy routes direct connections through a SOCKS5 proxy at "host:port".
func WithSOCKSProxy(address string) DirectOption {
	return func(c *directConfig) {
		c.socksProxy = address
	}
}

// WithUserAgent sets the User-Agent header on requests that have none.
func WithUserAgent(ua string) DirectOption {
	return func(c *directConfig) {
		c.userAgent = ua
	}
}

// NewDirect creates a Direct sender.
// The returned client has no overall timeout; per-request deadlines come from
// the request context.
func NewDirect(opts ...DirectOption) (*Direct, error) {
	cfg := &directConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	client := cfg.client
	if client == nil {
		t := &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     30 * time.Second,
		}
		if cfg.socksProxy != "" {
			if !isValidProxyAddress(cfg.socksProxy) {
				return nil, ErrInvalidProxyAddress
			}
			dialer, err := proxy.SOCKS5("tcp", cfg.socksProxy, nil, proxy.Direct)
			if err != nil {
				return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
			}
			t.Proxy = nil
			t.DialContext = dialContext(dialer)
		}
		client = &http.Client{Transport: t}
	}

	if cfg.userAgent != "" {
		client = withUserAgent(client, cfg.userAgent)
	}

	return &Direct{client: client}, nil
}

// Send implements Sender.
func (d *Direct) Send(req *http.Request) (*http.Response, error) {
	return d.client.Do(req)
}

// dialContext adapts a proxy.Dialer to http.Transport.DialContext.
func dialContext(dialer proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		return cd.DialContext
	}
	return func(_ context.Context, network, addr string) (net.Conn, error) {
		return dialer.Dial(network, addr)
	}
}

// isValidProxyAddress checks for "host:port" with a port in 1..65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// withUserAgent returns a shallow copy of client that sets ua on every request.
func withUserAgent(client *http.Client, ua string) *http.Client {
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c := *client
	c.Transport = &userAgentTransport{base: base, userAgent: ua}
	return &c
}

// userAgentTransport injects a User-Agent header when the request has none.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

// RoundTrip implements http.RoundTripper.
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(clone)
}
