package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/hotwalletscan/internal/arkham"
	"github.com/nao1215/hotwalletscan/internal/config"
	"github.com/nao1215/hotwalletscan/internal/crawler"
	"github.com/nao1215/hotwalletscan/internal/database"
	"github.com/nao1215/hotwalletscan/internal/metrics"
	"github.com/nao1215/hotwalletscan/internal/model"
	"github.com/nao1215/hotwalletscan/internal/pipeline"
	"github.com/nao1215/hotwalletscan/internal/report"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <entity-id-or-query>",
		Short: "Crawl the hot wallets of an entity",
		Long: `Scan resolves the entity, then crawls its outgoing transfers on every
requested chain (three chains at a time, pages of one chain in order) and
collects the sending addresses labelled "Hot Wallet" that belong to the entity.

A chain that fails keeps the rows found before the failure; other chains
continue. Press Ctrl+C to stop early; the rows gathered so far are reported.

Examples:
  # Crawl every supported chain with the defaults (5 pages of 500 transfers)
  hotwalletscan scan binance

  # Crawl two chains and export a CSV file
  hotwalletscan scan binance --chains bitcoin,ethereum --csv binance.csv

  # Markdown report written to a file, without saving the run to history
  hotwalletscan scan binance --markdown -o report.md --no-save

  # Cap the request rate and expose Prometheus metrics while scanning
  hotwalletscan scan binance --rps 2 --metrics-addr :9090`,
		Args: cobra.ExactArgs(1),
		RunE: runScanCmd,
	}

	f := cmd.Flags()
	f.StringSlice("chains", nil, "Chains to crawl, comma separated (default: all supported)")
	f.Int("page-size", config.DefaultPageSize, "Transfers per page")
	f.IntP("pages", "p", config.DefaultPageCount, "Pages per chain")
	f.Int("concurrency", config.DefaultChainConcurrency, "Chains crawled at once")
	f.Duration("page-delay", config.DefaultPageDelay, "Pause between two pages of one chain")
	f.Duration("page-timeout", config.DefaultPageTimeout, "Timeout of one page request")
	f.Float64("rps", 0, "Maximum transfer page requests per second across chains (0: unlimited)")

	f.String("csv", "", "Export the wallets to a CSV file")
	f.BoolP("json", "j", false, "Output JSON report (mutually exclusive with --markdown)")
	f.BoolP("markdown", "m", false, "Output Markdown report (mutually exclusive with --json)")
	f.StringP("output", "o", "", "Write the report to a file instead of stdout")
	f.Bool("no-save", false, "Do not record the run in the history database")
	f.BoolP("quiet", "q", false, "Do not print progress")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address while scanning")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildScanConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(cmd, cfg)
	return runScan(ctx, scanParams{
		cfg:     cfg,
		query:   args[0],
		flagged: changedFlags(cmd),
		out:     cmd.OutOrStdout(),
		status:  statusWriter(cmd, quiet),
		logger:  logger,
	})
}

// buildScanConfig layers the scan flags over the shared configuration.
// Only flags set explicitly override configuration file values.
func buildScanConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("chains") {
		if cfg.Chains, err = f.GetStringSlice("chains"); err != nil {
			return nil, err
		}
	}
	if f.Changed("page-size") {
		if cfg.PageSize, err = f.GetInt("page-size"); err != nil {
			return nil, err
		}
	}
	if f.Changed("pages") {
		if cfg.PageCount, err = f.GetInt("pages"); err != nil {
			return nil, err
		}
	}
	if cfg.ChainConcurrency, err = f.GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.PageDelay, err = f.GetDuration("page-delay"); err != nil {
		return nil, err
	}
	if cfg.PageTimeout, err = f.GetDuration("page-timeout"); err != nil {
		return nil, err
	}
	if cfg.RequestsPerSecond, err = f.GetFloat64("rps"); err != nil {
		return nil, err
	}
	if cfg.ExportFile, err = f.GetString("csv"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = f.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = f.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = f.GetString("output"); err != nil {
		return nil, err
	}
	noSave, err := f.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	if cfg.MetricsAddr, err = f.GetString("metrics-addr"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// changedFlags returns the names of the flags set on the command line.
func changedFlags(cmd *cobra.Command) map[string]bool {
	flagged := make(map[string]bool)
	for _, name := range []string{"chains", "page-size", "pages", "csv"} {
		if cmd.Flags().Changed(name) {
			flagged[name] = true
		}
	}
	return flagged
}

// statusWriter is where progress lines go: stderr, or nowhere when quiet.
func statusWriter(cmd *cobra.Command, quiet bool) io.Writer {
	if quiet {
		return io.Discard
	}
	return cmd.ErrOrStderr()
}

// reportFormat maps the report flags to a report.Format.
func reportFormat(cfg *config.Config) report.Format {
	switch {
	case cfg.JSONReport:
		return report.FormatJSON
	case cfg.MarkdownReport:
		return report.FormatMarkdown
	default:
		return report.FormatText
	}
}

type scanParams struct {
	cfg     *config.Config
	query   string
	flagged map[string]bool
	out     io.Writer
	status  io.Writer
	logger  *slog.Logger
}

// runScan resolves the entity, crawls it and runs the post-run steps.
func runScan(ctx context.Context, p scanParams) error {
	cfg := p.cfg

	var m *metrics.Metrics
	var clientOpts []arkham.Option
	if cfg.MetricsAddr != "" {
		m = metrics.New()
		clientOpts = append(clientOpts, arkham.WithRequestHook(m.ObserveRequest))
	}

	client, err := newClient(cfg, p.logger, clientOpts...)
	if err != nil {
		return err
	}

	entity, err := client.ResolveEntity(ctx, p.query)
	if err != nil {
		return fmt.Errorf("failed to resolve entity: %w", err)
	}

	cfg.ApplyProfile(entity.ID, p.flagged)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	chains, err := cfg.ParsedChains()
	if err != nil {
		return err
	}

	fmt.Fprintf(p.status, "Scanning %s on %d chain(s), %d page(s) of %d transfers...\n",
		entity, len(chains), cfg.PageCount, cfg.PageSize)

	observers := crawler.Observers{newProgressPrinter(p.status)}
	if m != nil {
		observers = append(observers, m)
	}

	orchestrator := crawler.NewOrchestrator(
		crawler.NewChainCrawler(client,
			crawler.WithPageDelay(cfg.PageDelay),
			crawler.WithPageTimeout(cfg.PageTimeout),
			crawler.WithPacer(crawler.NewRatePacer(cfg.RequestsPerSecond)),
			crawler.WithChainLogger(p.logger),
		),
		crawler.WithObserver(observers),
		crawler.WithChainConcurrency(cfg.ChainConcurrency),
		crawler.WithLogger(p.logger),
	)

	var db *database.HistoryDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
	}

	runReport := model.NewRunReport(entity, chains, cfg.PageSize, cfg.PageCount)
	pl := buildRunPipeline(cfg, orchestrator, db, m, p.out, p.logger)

	g, gctx := errgroup.WithContext(ctx)
	serveCtx, stopServe := context.WithCancel(gctx)
	if m != nil {
		g.Go(func() error {
			if err := m.Serve(serveCtx, cfg.MetricsAddr, p.logger); err != nil {
				p.logger.Warn("metrics server stopped", "addr", cfg.MetricsAddr, "error", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		defer stopServe()
		return pl.Execute(gctx, runReport)
	})
	err = g.Wait()
	stopServe()

	if errors.Is(err, context.Canceled) {
		// Interrupted: show what was gathered.
		fmt.Fprintln(p.status, "interrupted; partial results:")
		if rerr := pipeline.NewReportStep(report.NewWriter(reportFormat(cfg), p.out, getVersion())).
			Do(context.Background(), runReport); rerr != nil {
			p.logger.Error("failed to write partial report", "error", rerr)
		}
		return err
	}
	if err != nil {
		return err
	}

	if cfg.ExportFile != "" && runReport.Error == nil {
		fmt.Fprintf(p.status, "Exported %d wallet(s) to %s\n", len(runReport.Rows), cfg.ExportFile)
	}
	if runReport.Error != nil {
		return fmt.Errorf("scan finished with errors: %w", runReport.Error)
	}
	return nil
}

// buildRunPipeline assembles crawl, save, export and report steps.
func buildRunPipeline(cfg *config.Config, o *crawler.Orchestrator, db *database.HistoryDB, m *metrics.Metrics, out io.Writer, logger *slog.Logger) *pipeline.Pipeline {
	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	}
	if m != nil {
		opts = append(opts, pipeline.WithStepHook(m.ObserveStep))
	}
	pl := pipeline.New(opts...)
	pl.AddStep(crawler.NewCrawlStep(o, cfg.APIKey))

	post := pipeline.PostRunConfig{
		ExportPath: cfg.ExportFile,
		Format:     reportFormat(cfg),
		Version:    getVersion(),
		Logger:     logger,
	}
	if db != nil {
		post.Store = db
	}
	if cfg.ReportFile == "" {
		post.Output = out
	}
	pl.AddSteps(pipeline.PostRun(post)...)

	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				logger.Warn("failed to create report directory", "dir", dir, "error", err)
			}
		}
		pl.AddStep(pipeline.NewReportFileStep(cfg.ReportFile, reportFormat(cfg), getVersion()))
	}

	logger.Debug("run pipeline", "steps", strings.Join(pl.StepNames(), ","))
	return pl
}
