package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MonitorMetrics covers the dashboard session endpoints.
type MonitorMetrics struct {
	UnlockAttempts *prometheus.CounterVec
	Refreshes      *prometheus.CounterVec
	StreamClients  prometheus.Gauge
}

func NewMonitorMetrics(reg prometheus.Registerer) *MonitorMetrics {
	f := promauto.With(reg)
	return &MonitorMetrics{
		UnlockAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ticketpulse",
			Subsystem: "monitor",
			Name:      "unlock_attempts_total",
			Help:      "Dashboard unlock attempts by result",
		}, []string{"result"}),
		Refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ticketpulse",
			Subsystem: "monitor",
			Name:      "refresh_requests_total",
			Help:      "Manual refresh requests by result",
		}, []string{"result"}),
		StreamClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "ticketpulse",
			Subsystem: "monitor",
			Name:      "stream_clients",
			Help:      "Connected dashboard stream clients",
		}),
	}
}
