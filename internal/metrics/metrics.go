// Package metrics exposes interchange counters and timings to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mrlokans/weengz-air/internal/batch"
)

const namespace = "weengz_air"

// Metrics owns a private registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	operations *prometheus.CounterVec
	imports    *prometheus.CounterVec
	exported   prometheus.Counter
	purged     *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_operations_total",
			Help:      "Import operations applied, by kind and result.",
		}, []string{"kind", "result"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "XML imports, by dialect and status.",
		}, []string{"dialect", "status"}),
		exported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exported_reservations_total",
			Help:      "Reservations written to XML exports.",
		}),
		purged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purged_records_total",
			Help:      "Records removed or reset by purges.",
		}, []string{"record"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "interchange_duration_seconds",
			Help:      "Duration of import, export and purge runs.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	m.registry.MustRegister(m.operations, m.imports, m.exported, m.purged, m.duration)
	return m
}

// ObserveOperation has the batch.Observer signature.
func (m *Metrics) ObserveOperation(outcome batch.Outcome, err error) {
	result := "ok"
	switch {
	case err != nil:
		result = "fail"
	case outcome.Skipped:
		result = "skipped"
	}
	m.operations.WithLabelValues(outcome.Kind, result).Inc()
}

func (m *Metrics) ObserveImport(dialect, status string, elapsed time.Duration) {
	m.imports.WithLabelValues(dialect, status).Inc()
	m.duration.WithLabelValues("import").Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveExport(count int, elapsed time.Duration) {
	m.exported.Add(float64(count))
	m.duration.WithLabelValues("export").Observe(elapsed.Seconds())
}

func (m *Metrics) ObservePurge(reservations, modifications, seatsFreed int64, elapsed time.Duration) {
	m.purged.WithLabelValues("reservaciones").Add(float64(reservations))
	m.purged.WithLabelValues("modificaciones").Add(float64(modifications))
	m.purged.WithLabelValues("seats_freed").Add(float64(seatsFreed))
	m.duration.WithLabelValues("purge").Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
