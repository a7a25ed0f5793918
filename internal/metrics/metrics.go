// Package metrics exposes scheduler activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "sonote"

// Prometheus records scheduler events on its own registry.
type Prometheus struct {
	registry *prometheus.Registry

	enqueuedTotal  prometheus.Counter
	processedTotal *prometheus.CounterVec
	stageErrors    *prometheus.CounterVec
	stageDuration  *prometheus.HistogramVec
	fileSizeBytes  prometheus.Histogram
	activeRuns     prometheus.Gauge
}

// New creates the collectors and registers them, plus the Go runtime and
// process collectors, on a fresh registry.
func New() *Prometheus {
	m := &Prometheus{registry: prometheus.NewRegistry()}

	m.enqueuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "items_enqueued_total",
		Help:      "Files accepted into the batch queue.",
	})
	m.processedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "items_processed_total",
		Help:      "Items that reached a terminal status.",
	}, []string{"status"})
	m.stageErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "stage_errors_total",
		Help:      "Pipeline failures by stage.",
	}, []string{"stage"})
	m.stageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "stage_duration_seconds",
		Help:      "Time spent in each remote stage.",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"stage"})
	m.fileSizeBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "file_size_bytes",
		Help:      "Sizes of completed source files.",
		Buckets:   prometheus.ExponentialBuckets(1024, 10, 7), // 1KB .. 1GB
	})
	m.activeRuns = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "active_runs",
		Help:      "Pipeline runs currently holding a concurrency slot.",
	})

	m.registry.MustRegister(
		m.enqueuedTotal,
		m.processedTotal,
		m.stageErrors,
		m.stageDuration,
		m.fileSizeBytes,
		m.activeRuns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Prometheus) ItemsEnqueued(n int) {
	m.enqueuedTotal.Add(float64(n))
}

func (m *Prometheus) RunStarted() {
	m.activeRuns.Inc()
}

func (m *Prometheus) RunFinished() {
	m.activeRuns.Dec()
}

func (m *Prometheus) StageDuration(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Prometheus) ItemCompleted(sizeBytes int64) {
	m.processedTotal.WithLabelValues("completed").Inc()
	m.fileSizeBytes.Observe(float64(sizeBytes))
}

func (m *Prometheus) ItemFailed(stage string) {
	m.processedTotal.WithLabelValues("error").Inc()
	m.stageErrors.WithLabelValues(stage).Inc()
}

// Registry returns the registry the collectors live on.
func (m *Prometheus) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
