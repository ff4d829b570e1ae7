// Package metrics exposes Prometheus counters for payroll runs, rendered
// documents and dispatched e-mails.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lezzdif22/payslip/internal/models"
)

const namespace = "payslip"

// Recorder owns a private registry. All methods are safe on a nil
// *Recorder, so callers never need to check whether metrics are enabled.
type Recorder struct {
	registry *prometheus.Registry

	rowsProcessed prometheus.Counter
	rowsSkipped   *prometheus.CounterVec
	documents     *prometheus.CounterVec
	emails        *prometheus.CounterVec
	runDuration   prometheus.Histogram
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)

	return &Recorder{
		registry: reg,
		rowsProcessed: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_processed_total",
			Help:      "Employee rows turned into payroll records",
		}),
		rowsSkipped: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_skipped_total",
			Help:      "Rows skipped, by reason",
		}, []string{"reason"}),
		documents: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_rendered_total",
			Help:      "Payslip documents written, by format",
		}, []string{"format"}),
		emails: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_sent_total",
			Help:      "Payslip dispatch outcomes, by status",
		}, []string{"status"}),
		runDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of one payroll sheet run",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// ObserveRun records the outcome of one processed sheet.
func (r *Recorder) ObserveRun(processed int, skips []models.SkipEntry, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.rowsProcessed.Add(float64(processed))
	for _, s := range skips {
		r.rowsSkipped.WithLabelValues(s.Reason).Inc()
	}
	r.runDuration.Observe(elapsed.Seconds())
}

// DocumentRendered counts one written payslip.
func (r *Recorder) DocumentRendered(format string) {
	if r == nil {
		return
	}
	r.documents.WithLabelValues(format).Inc()
}

// EmailDispatched counts one dispatch outcome.
func (r *Recorder) EmailDispatched(status string) {
	if r == nil {
		return
	}
	r.emails.WithLabelValues(status).Inc()
}

// Registry returns the underlying registry, or nil.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
