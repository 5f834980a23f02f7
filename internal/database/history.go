package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/hotwalletscan/internal/model"
)

// FileName is the database file name inside the data directory.
const FileName = "hotwalletscan.db"

// storedTimeFormat has a fixed width so that timestamps sort as text.
const storedTimeFormat = "2006-01-02T15:04:05.000000000Z"

// HistoryDB is the SQLite store of crawl runs.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		entity_id TEXT NOT NULL,
		entity_name TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		elapsed_ms INTEGER NOT NULL DEFAULT 0,
		page_size INTEGER NOT NULL,
		page_count INTEGER NOT NULL,
		chains TEXT NOT NULL,
		address_count INTEGER NOT NULL DEFAULT 0,
		failed_chains INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_entity ON runs(entity_id);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS wallets (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		chain TEXT NOT NULL,
		address TEXT NOT NULL,
		arkm_url TEXT NOT NULL,
		label TEXT NOT NULL,
		PRIMARY KEY (run_id, address, chain)
	);

	CREATE INDEX IF NOT EXISTS idx_wallets_address ON wallets(address);

	CREATE TABLE IF NOT EXISTS chain_results (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		chain TEXT NOT NULL,
		outcome TEXT NOT NULL,
		reason TEXT,
		found INTEGER NOT NULL DEFAULT 0,
		pages_fetched INTEGER NOT NULL DEFAULT 0,
		elapsed_ms INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, chain)
	);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores a run report in a single transaction.
// Saving the same run ID twice replaces the earlier copy.
func (h *HistoryDB) SaveRun(ctx context.Context, report *model.RunReport) (err error) {
	if report == nil || report.ID == "" {
		return errors.New("cannot save run without an ID")
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}
	chainsJSON, err := json.Marshal(report.Chains)
	if err != nil {
		return fmt.Errorf("failed to serialize chains: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range []string{
		"DELETE FROM wallets WHERE run_id = ?",
		"DELETE FROM chain_results WHERE run_id = ?",
		"DELETE FROM runs WHERE id = ?",
	} {
		if _, err = tx.ExecContext(ctx, stmt, report.ID); err != nil {
			return fmt.Errorf("failed to replace run: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (id, entity_id, entity_name, started_at, elapsed_ms, page_size, page_count,
		chains, address_count, failed_chains, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.ID,
		report.Entity.ID,
		report.Entity.Name,
		report.StartedAt.UTC().Format(storedTimeFormat),
		report.Elapsed.Milliseconds(),
		report.PageSize,
		report.PageCount,
		string(chainsJSON),
		len(report.Rows),
		report.FailedChains(),
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, row := range report.Rows {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO wallets (run_id, chain, address, arkm_url, label)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, address, chain) DO UPDATE SET
			arkm_url = excluded.arkm_url,
			label = excluded.label
		`, report.ID, row.Chain, row.Address, row.ArkmURL, row.Label)
		if err != nil {
			return fmt.Errorf("failed to insert wallet: %w", err)
		}
	}

	for _, cr := range report.ChainResults {
		_, err = tx.ExecContext(ctx, `
		INSERT INTO chain_results (run_id, chain, outcome, reason, found, pages_fetched, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		`, report.ID, cr.Chain.String(), cr.Outcome.String(), cr.Reason, len(cr.Rows), cr.PagesFetched, cr.Elapsed.Milliseconds())
		if err != nil {
			return fmt.Errorf("failed to insert chain result: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// GetRun returns the run with the given ID, or nil if it does not exist.
func (h *HistoryDB) GetRun(ctx context.Context, id string) (*model.RunReport, error) {
	var reportJSON string
	err := h.db.QueryRowContext(ctx, "SELECT report_json FROM runs WHERE id = ?", id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return decodeReport(reportJSON)
}

// GetLatestRuns returns up to n most recent runs of an entity, newest first.
func (h *HistoryDB) GetLatestRuns(ctx context.Context, entityID string, n int) ([]*model.RunReport, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := h.db.QueryContext(ctx, `
	SELECT report_json FROM runs
	WHERE entity_id = ?
	ORDER BY started_at DESC
	LIMIT ?
	`, entityID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest runs: %w", err)
	}
	defer rows.Close()

	var reports []*model.RunReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		report, err := decodeReport(reportJSON)
		if err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// RunMetadata is the summary of a run shown in history listings.
type RunMetadata struct {
	ID           string        `json:"id"`
	EntityID     string        `json:"entity_id"`
	EntityName   string        `json:"entity_name"`
	StartedAt    time.Time     `json:"started_at"`
	Elapsed      time.Duration `json:"elapsed"`
	Chains       []model.Chain `json:"chains"`
	Addresses    int           `json:"addresses"`
	FailedChains int           `json:"failed_chains"`
}

// GetRunHistory returns metadata of every run of an entity, newest first.
func (h *HistoryDB) GetRunHistory(ctx context.Context, entityID string) ([]RunMetadata, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT id, entity_id, entity_name, started_at, elapsed_ms, chains, address_count, failed_chains
	FROM runs
	WHERE entity_id = ?
	ORDER BY started_at DESC
	`, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run history: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var (
			meta       RunMetadata
			startedAt  string
			elapsedMS  int64
			chainsJSON string
		)
		if err := rows.Scan(&meta.ID, &meta.EntityID, &meta.EntityName, &startedAt, &elapsedMS,
			&chainsJSON, &meta.Addresses, &meta.FailedChains); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		meta.StartedAt = parseTimestamp(startedAt)
		meta.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		if err := json.Unmarshal([]byte(chainsJSON), &meta.Chains); err != nil {
			meta.Chains = nil
		}
		results = append(results, meta)
	}
	return results, rows.Err()
}

// EntitySummary is one crawled entity with its run count.
type EntitySummary struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Runs    int       `json:"runs"`
	LastRun time.Time `json:"last_run"`
}

// ListEntities returns every entity that has at least one run, by ID.
func (h *HistoryDB) ListEntities(ctx context.Context) ([]EntitySummary, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT entity_id, MAX(entity_name), COUNT(*), MAX(started_at)
	FROM runs
	GROUP BY entity_id
	ORDER BY entity_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	defer rows.Close()

	var entities []EntitySummary
	for rows.Next() {
		var (
			e       EntitySummary
			lastRun string
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Runs, &lastRun); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		e.LastRun = parseTimestamp(lastRun)
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// FindWallet returns every stored sighting of an address, newest run first.
func (h *HistoryDB) FindWallet(ctx context.Context, address string) ([]WalletSighting, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT w.run_id, r.entity_id, r.entity_name, r.started_at, w.chain, w.address, w.arkm_url, w.label
	FROM wallets w
	JOIN runs r ON r.id = w.run_id
	WHERE w.address = ?
	ORDER BY r.started_at DESC
	`, strings.TrimSpace(address))
	if err != nil {
		return nil, fmt.Errorf("failed to find wallet: %w", err)
	}
	defer rows.Close()

	var sightings []WalletSighting
	for rows.Next() {
		var (
			s         WalletSighting
			startedAt string
		)
		if err := rows.Scan(&s.RunID, &s.EntityID, &s.EntityName, &startedAt,
			&s.Row.Chain, &s.Row.Address, &s.Row.ArkmURL, &s.Row.Label); err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		s.SeenAt = parseTimestamp(startedAt)
		sightings = append(sightings, s)
	}
	return sightings, rows.Err()
}

// WalletSighting is one stored occurrence of a wallet.
type WalletSighting struct {
	RunID      string             `json:"run_id"`
	EntityID   string             `json:"entity_id"`
	EntityName string             `json:"entity_name"`
	SeenAt     time.Time          `json:"seen_at"`
	Row        model.HotWalletRow `json:"row"`
}

func decodeReport(s string) (*model.RunReport, error) {
	var report model.RunReport
	if err := json.Unmarshal([]byte(s), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	if report.ErrorMessage != "" {
		report.Error = errors.New(report.ErrorMessage)
	}
	for i := range report.ChainResults {
		if report.ChainResults[i].Reason != "" {
			report.ChainResults[i].Err = errors.New(report.ChainResults[i].Reason)
		}
	}
	return &report, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// More specific formats come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp tries every known format and returns the zero time if none match.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
