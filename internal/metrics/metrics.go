// Package metrics exposes crawl and API request metrics in Prometheus format.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nao1215/hotwalletscan/internal/crawler"
	"github.com/nao1215/hotwalletscan/internal/model"
)

const namespace = "hotwalletscan"

// Metrics holds the crawl metrics of one process on a private registry.
// It implements crawler.Observer; ObserveRequest matches arkham.RequestHook and
// ObserveStep matches pipeline.StepHook.
type Metrics struct {
	registry *prometheus.Registry

	// Crawl metrics
	ChainsQueued    prometheus.Counter
	ChainPages      *prometheus.GaugeVec
	ChainAddresses  *prometheus.GaugeVec
	RowsTotal       *prometheus.CounterVec
	ChainsCompleted *prometheus.CounterVec
	ChainDuration   *prometheus.HistogramVec
	ProgressPercent prometheus.Gauge
	PagesCompleted  prometheus.Gauge
	AddressesTotal  prometheus.Gauge
	CompletedChains prometheus.Gauge

	// Run pipeline metrics
	StepDuration *prometheus.HistogramVec

	// API metrics
	APIRequests        *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
}

var _ crawler.Observer = (*Metrics)(nil)

// New creates a Metrics instance with all metrics registered on a new registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		ChainsQueued: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crawl",
			Name:      "chains_queued_total",
			Help:      "Total chains queued for crawling",
		}),
		ChainPages: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "crawl",
			Name:      "chain_pages_fetched",
			Help:      "Pages with transfers fetched so far per chain",
		}, []string{"chain"}),
		ChainAddresses: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "crawl",
			Name:      "chain_addresses",
			Help:      "Distinct hot wallet addresses found so far per chain",
		}, []string{"chain"}),
		RowsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crawl",
			Name:      "rows_found_total",
			Help:      "Total new hot wallet rows found",
		}, []string{"chain"}),
		ChainsCompleted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crawl",
			Name:      "chains_completed_total",
			Help:      "Total chains finished, by outcome",
		}, []string{"chain", "outcome"}),
		ChainDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "crawl",
			Name:      "chain_duration_seconds",
			Help:      "Wall-clock duration of one chain crawl",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}, []string{"outcome"}),
		ProgressPercent: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "crawl",
			Name:      "progress_percent",
			Help:      "Overall run progress in percent",
		}),
		PagesCompleted: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "crawl",
			Name:      "pages_completed",
			Help:      "Pages credited to the run progress",
		}),
		AddressesTotal: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "crawl",
			Name:      "addresses",
			Help:      "Addresses found by finished chains",
		}),
		CompletedChains: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "crawl",
			Name:      "completed_chains",
			Help:      "Chains finished in the current run",
		}),

		StepDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "step_duration_seconds",
			Help:      "Duration of run pipeline steps by step and status",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}, []string{"step", "status"}),

		APIRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total API requests by endpoint and status code",
		}, []string{"endpoint", "code"}),
		APIRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request latency",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"endpoint"}),
	}
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one API request. Status 0 is recorded as "error".
func (m *Metrics) ObserveRequest(endpoint string, status int, elapsed time.Duration, _ error) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.APIRequests.WithLabelValues(endpoint, code).Inc()
	m.APIRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveStep records one run pipeline step. It matches pipeline.StepHook.
func (m *Metrics) ObserveStep(step string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.StepDuration.WithLabelValues(step, status).Observe(elapsed.Seconds())
}

// ChainQueued implements crawler.Observer.
func (m *Metrics) ChainQueued(chain model.Chain) {
	m.ChainsQueued.Inc()
	m.ChainPages.WithLabelValues(chain.String()).Set(0)
	m.ChainAddresses.WithLabelValues(chain.String()).Set(0)
}

// RowsFound implements crawler.Observer.
func (m *Metrics) RowsFound(chain model.Chain, rows []model.HotWalletRow) {
	m.RowsTotal.WithLabelValues(chain.String()).Add(float64(len(rows)))
}

// ChainProgress implements crawler.Observer.
func (m *Metrics) ChainProgress(chain model.Chain, found, pagesFetched int) {
	m.ChainPages.WithLabelValues(chain.String()).Set(float64(pagesFetched))
	m.ChainAddresses.WithLabelValues(chain.String()).Set(float64(found))
}

// Progress implements crawler.Observer.
func (m *Metrics) Progress(p model.Progress) {
	m.ProgressPercent.Set(float64(p.Percent()))
	m.PagesCompleted.Set(float64(p.CompletedPages))
}

// ChainDone implements crawler.Observer.
func (m *Metrics) ChainDone(result model.ChainResult) {
	m.ChainsCompleted.WithLabelValues(result.Chain.String(), result.Outcome.String()).Inc()
	m.ChainDuration.WithLabelValues(result.Outcome.String()).Observe(result.Elapsed.Seconds())
}

// Summary implements crawler.Observer.
func (m *Metrics) Summary(s crawler.Summary) {
	m.CompletedChains.Set(float64(s.CompletedChains))
	m.AddressesTotal.Set(float64(s.Addresses))
}

// Serve serves /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
