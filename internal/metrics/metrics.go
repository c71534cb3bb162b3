// internal/metrics/metrics.go
// Package metrics records provider traffic and index size as Prometheus
// collectors and can dump them in the text exposition format.
package metrics

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mwiater/grounded/internal/logging"
)

// Outcome labels for provider requests.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Capability labels for provider requests.
const (
	CapabilityEmbed    = "embed"
	CapabilityComplete = "complete"
)

// Recorder holds the collectors for one process run.
type Recorder struct {
	registry         *prometheus.Registry
	ProviderRequests *prometheus.CounterVec
	ProviderLatency  *prometheus.HistogramVec
	IndexEntries     prometheus.Gauge
}

// NewRecorder creates the collectors and registers them on a private registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ProviderRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grounded_provider_requests_total",
				Help: "Provider requests by capability and outcome.",
			},
			[]string{"capability", "outcome"},
		),
		ProviderLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "grounded_provider_request_duration_seconds",
				Help:    "Provider request latency in seconds.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"capability"},
		),
		IndexEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "grounded_index_entries",
				Help: "Entries written by the most recent index build.",
			},
		),
	}
	r.registry.MustRegister(r.ProviderRequests, r.ProviderLatency, r.IndexEntries)
	return r
}

// Handler serves the recorder's collectors for scraping.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// WriteFile writes the current values to path in the text exposition format.
// An empty path is a no-op.
func (r *Recorder) WriteFile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics file %s: %w", path, err)
	}
	logging.LogEvent("[METRICS] Wrote metrics to %s", path)
	return nil
}
