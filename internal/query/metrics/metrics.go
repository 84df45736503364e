package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	QueriesTotal     *prometheus.CounterVec
	CacheHitsTotal   prometheus.Counter
	GateBlockedTotal prometheus.Counter
	UpstreamLatency  *prometheus.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		QueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "padron_queries_total",
			Help: "Total query attempts by service and outcome",
		}, []string{"service", "outcome"}),
		CacheHitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "padron_query_cache_hits_total",
			Help: "Total queries short-circuited by the per-service result cache",
		}),
		GateBlockedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "padron_query_gate_blocked_total",
			Help: "Total queries blocked by the credit gate before any network attempt",
		}),
		UpstreamLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "padron_upstream_latency_seconds",
			Help:    "Upstream call latency by service",
			Buckets: prometheus.DefBuckets,
		}, []string{"service"}),
	}
}

func (m *Metrics) ObserveQuery(service, outcome string) {
	m.QueriesTotal.WithLabelValues(service, outcome).Inc()
}

func (m *Metrics) ObserveCacheHit() {
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) ObserveGateBlocked() {
	m.GateBlockedTotal.Inc()
}

func (m *Metrics) ObserveUpstreamLatency(service string, d time.Duration) {
	m.UpstreamLatency.WithLabelValues(service).Observe(d.Seconds())
}
