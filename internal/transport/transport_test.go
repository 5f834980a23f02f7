package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// closedServerURL returns the URL of a server that is no longer listening.
func closedServerURL(t *testing.T) string {
	t.Helper()

	srv := httptest.NewServer(http.NotFoundHandler())
	u := srv.URL
	srv.Close()
	return u
}

func TestDirect(t *testing.T) {
	t.Parallel()

	t.Run("HTTP error status is returned as a response", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		d, err := NewDirect()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
		resp, err := d.Send(req)
		if err != nil {
			t.Fatalf("expected no error for HTTP status, got %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", resp.StatusCode)
		}
	})

	t.Run("sets user agent", func(t *testing.T) {
		t.Parallel()

		var got atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			got.Store(r.Header.Get("User-Agent"))
		}))
		defer srv.Close()

		d, err := NewDirect(WithUserAgent("hotwalletscan-test"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
		resp, err := d.Send(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()
		if got.Load() != "hotwalletscan-test" {
			t.Errorf("unexpected user agent %v", got.Load())
		}
	})

	t.Run("rejects invalid SOCKS address", func(t *testing.T) {
		t.Parallel()

		if _, err := NewDirect(WithSOCKSProxy("no-port")); !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
		}
		if _, err := NewDirect(WithSOCKSProxy("127.0.0.1:70000")); !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
		}
	})

	t.Run("accepts valid SOCKS address", func(t *testing.T) {
		t.Parallel()

		if _, err := NewDirect(WithSOCKSProxy("127.0.0.1:9050")); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestForwardingRewrite(t *testing.T) {
	t.Parallel()

	f, err := NewForwarding("https://relay.example/proxy?token=1", SenderFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("unused")
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet,
		"https://api.example/transfers?base=acme&limit=500", nil)
	req.Header.Set(CredentialHeader, "secret-key")

	fwd, err := f.Rewrite(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fwd.URL.Host != "relay.example" || fwd.URL.Path != "/proxy" {
		t.Errorf("unexpected forward URL %s", fwd.URL)
	}
	if got := fwd.URL.Query().Get("url"); got != "https://api.example/transfers?base=acme&limit=500" {
		t.Errorf("unexpected url parameter %q", got)
	}
	if fwd.URL.Query().Get("token") != "1" {
		t.Error("existing relay query parameters must be kept")
	}
	if fwd.Header.Get(CredentialHeader) != "" {
		t.Error("credential header must be removed")
	}
	if fwd.Header.Get(ForwardCredentialHeader) != "secret-key" {
		t.Errorf("expected forwarded credential, got %q", fwd.Header.Get(ForwardCredentialHeader))
	}
	if req.Header.Get(CredentialHeader) != "secret-key" {
		t.Error("original request must not be modified")
	}
}

func TestNewForwardingRejectsInvalidURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"relay.example", "ftp://relay.example", "://bad"} {
		if _, err := NewForwarding(raw, nil); !errors.Is(err, ErrInvalidForwardURL) {
			t.Errorf("%q: expected ErrInvalidForwardURL, got %v", raw, err)
		}
	}
}

func TestFallback(t *testing.T) {
	t.Parallel()

	t.Run("network error retries once through forwarder", func(t *testing.T) {
		t.Parallel()

		var relayHits atomic.Int32
		relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			relayHits.Add(1)
			if r.Header.Get(ForwardCredentialHeader) != "k" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = io.WriteString(w, "relayed:"+r.URL.Query().Get("url"))
		}))
		defer relay.Close()

		sender, err := New(relay.URL, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		target := closedServerURL(t) + "/health"
		req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, target, nil)
		req.Header.Set(CredentialHeader, "k")

		resp, err := sender.Send(req)
		if err != nil {
			t.Fatalf("expected fallback to succeed, got %v", err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if string(body) != "relayed:"+target {
			t.Errorf("unexpected body %q", body)
		}
		if relayHits.Load() != 1 {
			t.Errorf("expected exactly one forwarded attempt, got %d", relayHits.Load())
		}
	})

	t.Run("HTTP error status is not retried", func(t *testing.T) {
		t.Parallel()

		var secondaryCalls atomic.Int32
		primary := SenderFunc(func(*http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusTooManyRequests, Body: http.NoBody}, nil
		})
		secondary := SenderFunc(func(*http.Request) (*http.Response, error) {
			secondaryCalls.Add(1)
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
		})

		req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://api.invalid/x", nil)
		resp, err := NewFallback(primary, secondary, nil).Send(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			t.Errorf("expected 429 to be returned, got %d", resp.StatusCode)
		}
		if secondaryCalls.Load() != 0 {
			t.Error("secondary must not be called for HTTP status errors")
		}
	})

	t.Run("cancelled request is not retried", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		var secondaryCalls atomic.Int32
		primary := SenderFunc(func(*http.Request) (*http.Response, error) {
			cancel()
			return nil, context.Canceled
		})
		secondary := SenderFunc(func(*http.Request) (*http.Response, error) {
			secondaryCalls.Add(1)
			return nil, errors.New("unexpected")
		})

		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "http://api.invalid/x", nil)
		_, err := NewFallback(primary, secondary, nil).Send(req)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if secondaryCalls.Load() != 0 {
			t.Error("secondary must not be called after cancellation")
		}
	})

	t.Run("without forwarder the network error propagates", func(t *testing.T) {
		t.Parallel()

		sender, err := New("", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := sender.(*Direct); !ok {
			t.Fatalf("expected *Direct, got %T", sender)
		}

		req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, closedServerURL(t), nil)
		if _, err := sender.Send(req); err == nil {
			t.Error("expected network error")
		}
	})
}
