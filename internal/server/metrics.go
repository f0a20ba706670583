package server

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/diagrammer/pkg/observability"
)

// Metrics records diagram, persistence and HTTP events as Prometheus metrics.
// It implements the observability hook interfaces.
type Metrics struct {
	mutations *prometheus.CounterVec
	nodes     prometheus.Gauge
	edges     prometheus.Gauge

	loads        *prometheus.CounterVec
	saves        *prometheus.CounterVec
	saveBytes    prometheus.Gauge
	saveDuration prometheus.Histogram

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "diagrammer_mutations_total",
			Help: "Committed diagram mutations by operation",
		}, []string{"op"}),
		nodes: f.NewGauge(prometheus.GaugeOpts{
			Name: "diagrammer_nodes",
			Help: "Nodes in the current snapshot",
		}),
		edges: f.NewGauge(prometheus.GaugeOpts{
			Name: "diagrammer_edges",
			Help: "Edges in the current snapshot",
		}),

		loads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "diagrammer_loads_total",
			Help: "Startup loads by source and fallback reason",
		}, []string{"source", "reason"}),
		saves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "diagrammer_saves_total",
			Help: "Snapshot writes by result",
		}, []string{"result"}),
		saveBytes: f.NewGauge(prometheus.GaugeOpts{
			Name: "diagrammer_save_bytes",
			Help: "Size of the last written snapshot",
		}),
		saveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "diagrammer_save_duration_seconds",
			Help:    "Snapshot write latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
		}),

		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "diagrammer_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "diagrammer_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// OnMutation implements observability.StoreHooks.
func (m *Metrics) OnMutation(_ context.Context, op string, nodes, edges int) {
	m.mutations.WithLabelValues(op).Inc()
	m.nodes.Set(float64(nodes))
	m.edges.Set(float64(edges))
}

// OnLoad implements observability.PersistHooks.
func (m *Metrics) OnLoad(_ context.Context, source, reason string) {
	m.loads.WithLabelValues(source, reason).Inc()
}

// OnSave implements observability.PersistHooks.
func (m *Metrics) OnSave(_ context.Context, size int, d time.Duration, err error) {
	if err != nil {
		m.saves.WithLabelValues("error").Inc()
		return
	}
	m.saves.WithLabelValues("ok").Inc()
	m.saveBytes.Set(float64(size))
	m.saveDuration.Observe(d.Seconds())
}

// OnResponse implements observability.HTTPHooks.
func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.StoreHooks   = (*Metrics)(nil)
	_ observability.PersistHooks = (*Metrics)(nil)
	_ observability.HTTPHooks    = (*Metrics)(nil)
)
