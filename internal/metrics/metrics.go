// internal/metrics/metrics.go
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tamzrod/transformer-monitor/internal/poller"
)

// Prometheus records poll activity on its own registry.
// It implements poller.Recorder.
type Prometheus struct {
	reg *prometheus.Registry

	reads    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	session  *prometheus.GaugeVec
	failed   *prometheus.GaugeVec
}

var _ poller.Recorder = (*Prometheus)(nil)

func NewPrometheus() *Prometheus {
	p := &Prometheus{
		reg: prometheus.NewRegistry(),
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transformer_reads_total",
			Help: "Register reads by outcome.",
		}, []string{"device", "measurement", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "transformer_read_duration_seconds",
			Help:    "Duration of one measurement read.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"device"}),
		session: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "transformer_session_open",
			Help: "1 while a Modbus TCP session is held.",
		}, []string{"device"}),
		failed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "transformer_failed_readings",
			Help: "Failed readings in the last poll.",
		}, []string{"device"}),
	}

	p.reg.MustRegister(p.reads, p.duration, p.session, p.failed)
	return p
}

func (p *Prometheus) ObserveRead(device, measurement, outcome string, d time.Duration) {
	p.reads.WithLabelValues(device, measurement, outcome).Inc()
	p.duration.WithLabelValues(device).Observe(d.Seconds())
}

func (p *Prometheus) SetSessionOpen(device string, open bool) {
	v := 0.0
	if open {
		v = 1
	}
	p.session.WithLabelValues(device).Set(v)
}

func (p *Prometheus) ObservePoll(device string, failed int) {
	p.failed.WithLabelValues(device).Set(float64(failed))
}

// Registry exposes the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry { return p.reg }

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}
