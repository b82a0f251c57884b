package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Produccion-api/internal/application/ledger"
)

var _ ledger.Observer = (*LedgerMetrics)(nil)

// LedgerMetrics cuenta y mide las operaciones del libro de stock por op y resultado.
type LedgerMetrics struct {
	registry *prometheus.Registry
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewLedgerMetrics registra los colectores en un registro propio (más los de proceso y runtime de Go).
func NewLedgerMetrics() *LedgerMetrics {
	m := &LedgerMetrics{
		registry: prometheus.NewRegistry(),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "produccion",
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Operaciones del libro de stock por tipo y resultado.",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "produccion",
			Subsystem: "ledger",
			Name:      "operation_duration_seconds",
			Help:      "Duración de las operaciones del libro de stock.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "outcome"}),
	}
	m.registry.MustRegister(
		m.ops,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe implementa ledger.Observer.
func (m *LedgerMetrics) Observe(op, outcome string, elapsed time.Duration) {
	m.ops.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op, outcome).Observe(elapsed.Seconds())
}

// Handler expone el registro en formato Prometheus (montar en /metrics).
func (m *LedgerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
