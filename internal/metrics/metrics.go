// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "splitledger"

// Metrics is a private registry with the service's collectors.
type Metrics struct {
	Registry *prometheus.Registry

	RPCRequests *prometheus.CounterVec
	RPCDuration *prometheus.HistogramVec

	// LedgerWrites counts committed writes by operation.
	LedgerWrites *prometheus.CounterVec

	RecurringRuns         *prometheus.CounterVec
	RecurringMaterialized prometheus.Counter
}

// New registers every collector plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		RPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC requests by procedure and result code.",
		}, []string{"procedure", "code"}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		LedgerWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_writes_total",
			Help:      "Committed ledger writes by operation.",
		}, []string{"op"}),
		RecurringRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recurring_runs_total",
			Help:      "Recurring materializer runs by result.",
		}, []string{"result"}),
		RecurringMaterialized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recurring_materialized_total",
			Help:      "Expenses created from recurring templates.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RPCRequests,
		m.RPCDuration,
		m.LedgerWrites,
		m.RecurringRuns,
		m.RecurringMaterialized,
	)
	return m
}

// Write records a committed ledger write. Safe on a nil receiver.
func (m *Metrics) Write(op string) {
	if m == nil {
		return
	}
	m.LedgerWrites.WithLabelValues(op).Inc()
}

// ObserveRPC records one finished RPC. Safe on a nil receiver.
func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RPCRequests.WithLabelValues(procedure, code).Inc()
	m.RPCDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
