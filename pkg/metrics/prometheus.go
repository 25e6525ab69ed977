package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	shutdownTimeout = 5 * time.Second
)

// Manager owns every metric of the program.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Library loading
	chartsLoaded *prometheus.CounterVec
	chartsFailed *prometheus.CounterVec
	parseSeconds prometheus.Histogram

	// Play
	sessions   prometheus.Counter
	judgements *prometheus.CounterVec
	combo      prometheus.Gauge
}

// Global manager on its own registry, so the Go runtime collectors are
// not exported.
var customRegistry = prometheus.NewRegistry()
var globalManager = NewManager(WithPrometheusRegistry(customRegistry))

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "stepchart",
		histogramBuckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.chartsLoaded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "charts_loaded_total",
		Help:      "Charts parsed successfully, by dialect",
	}, []string{"dialect"})

	m.chartsFailed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "charts_failed_total",
		Help:      "Charts skipped because they failed to load, by reason",
	}, []string{"reason"})

	m.parseSeconds = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "chart_parse_seconds",
		Help:      "Time taken to parse one chart",
		Buckets:   m.histogramBuckets,
	})

	m.sessions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_total",
		Help:      "Play sessions started",
	})

	m.judgements = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "judgements_total",
		Help:      "Judged notes, by judgement",
	}, []string{"judgement"})

	m.combo = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "combo",
		Help:      "Combo of the current session",
	})
}

func (m *Manager) RecordChartLoaded(dialect string) {
	m.chartsLoaded.WithLabelValues(dialect).Inc()
}

func (m *Manager) RecordChartFailed(reason string) {
	m.chartsFailed.WithLabelValues(reason).Inc()
}

func (m *Manager) ObserveParse(d time.Duration) {
	m.parseSeconds.Observe(d.Seconds())
}

func (m *Manager) RecordSession() {
	m.sessions.Inc()
	m.combo.Set(0)
}

func (m *Manager) RecordJudgement(judgement string, combo uint32) {
	m.judgements.WithLabelValues(judgement).Inc()
	m.combo.Set(float64(combo))
}

func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Manager) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("%w: %w", ErrServe, err)
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdown); nil != err {
			return fmt.Errorf("%w: %w", ErrServe, err)
		}
		if err := <-errs; nil != err && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%w: %w", ErrServe, err)
		}
		return nil
	}
}

// Default returns the global manager.
func Default() *Manager {
	return globalManager
}

// GetRegistry returns the registry of the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
