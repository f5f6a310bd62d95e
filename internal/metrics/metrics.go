// Package metrics exposes pipeline counters in the Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder implements core.Metrics on its own registry.
type Recorder struct {
	registry *prometheus.Registry
	emails   *prometheus.CounterVec
	imported *prometheus.CounterVec
	exports  *prometheus.CounterVec
}

// New creates a Recorder with the pipeline counters and the Go runtime
// collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scidesk_emails_total",
			Help: "Notification emails by batch kind and result.",
		}, []string{"kind", "result"}),
		imported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scidesk_import_rows_total",
			Help: "Spreadsheet rows read by upload kind.",
		}, []string{"kind"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scidesk_exports_total",
			Help: "Generated downloads by kind.",
		}, []string{"kind"}),
	}
	r.registry.MustRegister(
		r.emails,
		r.imported,
		r.exports,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) EmailSent(kind string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	r.emails.WithLabelValues(kind, result).Inc()
}

func (r *Recorder) RowsImported(kind string, n int) {
	if n <= 0 {
		return
	}
	r.imported.WithLabelValues(kind).Add(float64(n))
}

func (r *Recorder) FileExported(kind string) {
	r.exports.WithLabelValues(kind).Inc()
}

// Handler serves the registry for scraping.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
