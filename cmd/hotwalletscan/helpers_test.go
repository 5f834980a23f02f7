package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/nao1215/hotwalletscan/internal/model"
)

const (
	testAPIKey     = "test-key-123456"
	testEntityID   = "acme"
	testEntityName = "Acme Exchange"
)

// fakeAPI serves the endpoints used by the CLI. wallets maps a chain to the
// hot wallet addresses returned on its first page; chains listed in failing
// answer 500.
type fakeAPI struct {
	*httptest.Server
	wallets   map[string][]string
	failing   map[string]bool
	transfers atomic.Int64
}

func newFakeAPI(t *testing.T, wallets map[string][]string, failing ...string) *fakeAPI {
	t.Helper()

	api := &fakeAPI{wallets: wallets, failing: make(map[string]bool)}
	for _, c := range failing {
		api.failing[c] = true
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/chains", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("API-Key") != testAPIKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`["bitcoin","ethereum"]`))
	})
	mux.HandleFunc("/intelligence/search", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("API-Key") != testAPIKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		writeTestJSON(t, w, map[string]any{
			"arkhamEntities": []model.Entity{
				{ID: testEntityID, Name: testEntityName, Type: "cex"},
				{ID: "acme-labs", Name: "Acme Labs", Type: "fund"},
			},
		})
	})
	mux.HandleFunc("/transfers", api.handleTransfers)

	api.Server = httptest.NewServer(mux)
	t.Cleanup(api.Close)
	return api
}

func (a *fakeAPI) handleTransfers(w http.ResponseWriter, r *http.Request) {
	a.transfers.Add(1)
	q := r.URL.Query()
	chain := q.Get("chains")
	if a.failing[chain] {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}

	var records []model.TransferRecord
	if offset, _ := strconv.Atoi(q.Get("offset")); offset == 0 {
		for i, addr := range a.wallets[chain] {
			records = append(records, model.TransferRecord{
				ID:    chain + "-" + strconv.Itoa(i),
				Chain: chain,
				FromAddress: &model.AddressInfo{
					Address:      addr,
					Chain:        chain,
					ArkhamEntity: &model.EntityRef{ID: testEntityID, Name: testEntityName},
					ArkhamLabel:  &model.Label{Name: model.HotWalletLabel},
				},
			})
		}
		// Same entity, different label: never reported.
		records = append(records, model.TransferRecord{
			ID:    chain + "-cold",
			Chain: chain,
			FromAddress: &model.AddressInfo{
				Address:      "cold-" + chain,
				Chain:        chain,
				ArkhamEntity: &model.EntityRef{ID: testEntityID, Name: testEntityName},
				ArkhamLabel:  &model.Label{Name: "Cold Wallet"},
			},
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"transfers": records, "count": len(records)})
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

// testEnv isolates a CLI invocation: an empty configuration file and a
// private database directory.
type testEnv struct {
	configPath string
	dbDir      string
	dir        string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("{}\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return testEnv{
		configPath: configPath,
		dbDir:      filepath.Join(dir, "db"),
		dir:        dir,
	}
}

// args prefixes the isolation flags to a command line.
func (e testEnv) args(args ...string) []string {
	return append([]string{args[0], "--config", e.configPath, "--db-dir", e.dbDir}, args[1:]...)
}

// executeCommand runs the root command and returns its stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
