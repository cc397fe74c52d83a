package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	upstreamTotal   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	cyclesTotal     *prometheus.CounterVec
	cycleLatency    prometheus.Histogram
	remaining       *prometheus.GaugeVec
	percentSold     *prometheus.GaugeVec
	errorsTotal     *prometheus.CounterVec
}

// New creates a recorder whose collectors are registered on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		upstreamTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketpulse_upstream_requests_total",
				Help: "Vendor availability requests by tier and outcome",
			},
			[]string{"tier", "result"},
		),
		upstreamLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ticketpulse_upstream_request_seconds",
				Help:    "Vendor availability request latency",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"tier"},
		),
		cyclesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketpulse_poll_cycles_total",
				Help: "Poll cycles by result",
			},
			[]string{"result"},
		),
		cycleLatency: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ticketpulse_poll_cycle_seconds",
				Help:    "Duration of a full poll cycle",
				Buckets: prometheus.DefBuckets,
			},
		),
		remaining: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ticketpulse_tier_remaining",
				Help: "Last observed remaining tickets per tier",
			},
			[]string{"tier"},
		),
		percentSold: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ticketpulse_tier_percent_sold",
				Help: "Percent of pinned capacity sold per tier",
			},
			[]string{"tier"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticketpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordUpstream records one vendor request; kind is "ok" or an error kind.
func (r *Recorder) RecordUpstream(tier, kind string, d time.Duration) {
	r.upstreamTotal.WithLabelValues(tier, kind).Inc()
	r.upstreamLatency.WithLabelValues(tier).Observe(d.Seconds())
}

// RecordCycle records a poll cycle outcome.
func (r *Recorder) RecordCycle(result string, d time.Duration) {
	r.cyclesTotal.WithLabelValues(result).Inc()
	r.cycleLatency.Observe(d.Seconds())
}

// RecordTier updates the per-tier gauges.
func (r *Recorder) RecordTier(tier string, remaining int, percentSold float64) {
	r.remaining.WithLabelValues(tier).Set(float64(remaining))
	r.percentSold.WithLabelValues(tier).Set(percentSold)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
