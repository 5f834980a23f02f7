package arkham

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/hotwalletscan/internal/model"
	"github.com/nao1215/hotwalletscan/internal/transport"
)

func newTestClient(t *testing.T, h http.Handler, opts ...Option) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, append([]Option{WithAPIKey("test-key"), WithLogger(discardLogger())}, opts...)...)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("default base URL", func(t *testing.T) {
		t.Parallel()

		c, err := NewClient("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.BaseURL() != DefaultBaseURL {
			t.Errorf("expected %s, got %s", DefaultBaseURL, c.BaseURL())
		}
	})

	t.Run("invalid base URL", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{"api.example", "ftp://api.example"} {
			if _, err := NewClient(raw); !errors.Is(err, ErrInvalidBaseURL) {
				t.Errorf("%q: expected ErrInvalidBaseURL, got %v", raw, err)
			}
		}
	})
}

func TestSearchEntities(t *testing.T) {
	t.Parallel()

	t.Run("decodes entities and caches case-insensitively", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			if r.URL.Path != "/intelligence/search" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.Header.Get(transport.CredentialHeader) != "test-key" {
				t.Errorf("missing credential header")
			}
			_, _ = io.WriteString(w, `{"arkhamEntities":[{"id":"binance","name":"Binance","type":"cex"},{"id":"","name":"ignored"}]}`)
		}))

		got, err := c.SearchEntities(context.Background(), " Binance ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].ID != "binance" || got[0].Type != "cex" {
			t.Fatalf("unexpected entities %+v", got)
		}

		again, err := c.SearchEntities(context.Background(), "BINANCE")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(again) != 1 {
			t.Fatalf("unexpected cached entities %+v", again)
		}
		if hits.Load() != 1 {
			t.Errorf("expected 1 request, got %d", hits.Load())
		}
	})

	t.Run("unnamed entity keeps an empty name", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"arkhamEntities":[{"id":"e-123","name":""}]}`)
		}))

		got, err := c.SearchEntities(context.Background(), "e-123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].ID != "e-123" {
			t.Fatalf("unexpected entities %+v", got)
		}
		if got[0].Name != "" {
			t.Errorf("expected empty name, got %q", got[0].Name)
		}
		if got[0].String() != "e-123" {
			t.Errorf("expected ID as display name, got %q", got[0].String())
		}
	})

	t.Run("empty query", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.NotFoundHandler())
		if _, err := c.SearchEntities(context.Background(), "  "); !errors.Is(err, ErrEmptyQuery) {
			t.Errorf("expected ErrEmptyQuery, got %v", err)
		}
	})

	t.Run("status error carries code", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "slow down", http.StatusTooManyRequests)
		}))

		_, err := c.SearchEntities(context.Background(), "acme")
		if !IsStatus(err, http.StatusTooManyRequests) {
			t.Fatalf("expected 429 status error, got %v", err)
		}
		if !strings.Contains(err.Error(), "http status 429: slow down") {
			t.Errorf("unexpected message %q", err.Error())
		}
	})
}

func TestResolveEntity(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"arkhamEntities":[{"id":"acme-labs","name":"Acme Labs"},{"id":"acme","name":"Acme"}]}`)
	}))

	e, err := c.ResolveEntity(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ID != "acme" {
		t.Errorf("expected exact ID match, got %+v", e)
	}

	e, err = c.ResolveEntity(context.Background(), "Acme L")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ID != "acme-labs" {
		t.Errorf("expected first hit, got %+v", e)
	}
}

func TestCheckKey(t *testing.T) {
	t.Parallel()

	t.Run("accepted", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/chains" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			_, _ = io.WriteString(w, `["bitcoin"]`)
		}))
		if st := c.CheckKey(context.Background()); !st.OK || st.Message != "" {
			t.Errorf("unexpected status %+v", st)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		st := c.CheckKey(context.Background())
		if st.OK || !strings.Contains(st.Message, "401") {
			t.Errorf("unexpected status %+v", st)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()

		c, err := NewClient("http://127.0.0.1:1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		st := c.CheckKey(context.Background())
		if st.OK || st.Message != ErrNoAPIKey.Error() {
			t.Errorf("unexpected status %+v", st)
		}
	})
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		status  int
		wantErr bool
	}{
		{name: "ok", body: "ok", status: http.StatusOK},
		{name: "ok with whitespace and case", body: "  OK\n", status: http.StatusOK},
		{name: "other body", body: "degraded", status: http.StatusOK, wantErr: true},
		{name: "server error", body: "ok", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get(transport.CredentialHeader) != "" {
					t.Error("health must be unauthenticated")
				}
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))

			err := c.Health(context.Background())
			if tt.wantErr {
				if !errors.Is(err, ErrUnhealthy) {
					t.Errorf("expected ErrUnhealthy, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestFetchTransfers(t *testing.T) {
	t.Parallel()

	t.Run("sends pagination filters", func(t *testing.T) {
		t.Parallel()

		var hookCalls atomic.Int32
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			want := map[string]string{
				"base": "E1", "flow": "out", "usdGte": "1", "sortKey": "time",
				"sortDir": "desc", "limit": "500", "offset": "1000", "chains": "bitcoin",
			}
			for k, v := range want {
				if q.Get(k) != v {
					t.Errorf("query %s: expected %q, got %q", k, v, q.Get(k))
				}
			}
			if r.Header.Get(transport.CredentialHeader) != "override" {
				t.Errorf("expected per-query API key")
			}
			_, _ = io.WriteString(w, `{"transfers":[{"id":"t1","fromAddressOwner":{"address":"bc1xyz","chain":"bitcoin","arkhamEntity":{"id":"E1","name":"Acme"},"arkhamLabel":{"name":"Hot Wallet"}}}],"count":1}`)
		}), WithRequestHook(func(endpoint string, status int, _ time.Duration, err error) {
			hookCalls.Add(1)
			if endpoint != "/transfers" || status != http.StatusOK || err != nil {
				t.Errorf("unexpected hook call %s %d %v", endpoint, status, err)
			}
		}))

		page, err := c.FetchTransfers(context.Background(), TransferQuery{
			EntityID: "E1", Chain: model.ChainBitcoin, Limit: 500, Offset: 1000, APIKey: "override",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.Transfers) != 1 {
			t.Fatalf("expected 1 transfer, got %d", len(page.Transfers))
		}
		cp := page.Transfers[0].FromAddressOwner.Counterparty()
		if cp.EntityName != "Acme" || cp.LabelName != "Hot Wallet" || cp.Address != "bc1xyz" {
			t.Errorf("unexpected counterparty %+v", cp)
		}
		if hookCalls.Load() != 1 {
			t.Errorf("expected 1 hook call, got %d", hookCalls.Load())
		}
	})

	t.Run("invalid query is rejected before sending", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Error("request must not be sent")
		}))
		if _, err := c.FetchTransfers(context.Background(), TransferQuery{Chain: model.ChainBitcoin, Limit: 1}); err == nil {
			t.Error("expected error for missing entity")
		}
		if _, err := c.FetchTransfers(context.Background(), TransferQuery{EntityID: "E1", Chain: model.ChainBitcoin}); err == nil {
			t.Error("expected error for zero limit")
		}
	})

	t.Run("deadline surfaces as error", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		c := newTestClient(t, http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := c.FetchTransfers(ctx, TransferQuery{EntityID: "E1", Chain: model.ChainBitcoin, Limit: 10})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	})
}
