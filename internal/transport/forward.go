package transport

import (
	"fmt"
	"net/http"
	"net/url"
)

// Forwarding sends requests through a forwarding relay.
// The relay receives GET <base>?url=<original URL> and the API key in
// ForwardCredentialHeader, and replies with the origin response verbatim.
type Forwarding struct {
	base *url.URL
	next Sender
}

// NewForwarding creates a Forwarding sender for the relay at baseURL.
// Requests are sent with next, which is usually a Direct sender.
func NewForwarding(baseURL string, next Sender) (*Forwarding, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidForwardURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidForwardURL
	}
	return &Forwarding{base: u, next: next}, nil
}

// Send implements Sender.
func (f *Forwarding) Send(req *http.Request) (*http.Response, error) {
	fwd, err := f.Rewrite(req)
	if err != nil {
		return nil, err
	}
	return f.next.Send(fwd)
}

// Rewrite returns a copy of req addressed to the relay.
// The original request is not modified.
func (f *Forwarding) Rewrite(req *http.Request) (*http.Request, error) {
	target := *f.base
	q := target.Query()
	q.Set("url", req.URL.String())
	target.RawQuery = q.Encode()

	clone := req.Clone(req.Context())
	clone.URL = &target
	clone.Host = ""
	clone.RequestURI = ""

	if req.Body != nil && req.Body != http.NoBody {
		if req.GetBody == nil {
			return nil, fmt.Errorf("cannot forward request with non-rewindable body to %s", f.base.Host)
		}
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to rewind request body: %w", err)
		}
		clone.Body = body
	}

	if key := clone.Header.Get(CredentialHeader); key != "" {
		clone.Header.Del(CredentialHeader)
		clone.Header.Set(ForwardCredentialHeader, key)
	}

	return clone, nil
}
