// Package metrics holds the prometheus collectors exported by the wallet.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every collector. A nil *Metrics is a valid no-op recorder.
type Metrics struct {
	registry *prometheus.Registry

	rpcRequests     *prometheus.CounterVec
	rpcDuration     *prometheus.HistogramVec
	payments        *prometheus.CounterVec
	confirmWait     prometheus.Histogram
	httpRequests    *prometheus.CounterVec
	accountBalance  *prometheus.GaugeVec
	lastLedgerIndex prometheus.Gauge
}

// New creates collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xrplw_rpc_requests_total",
			Help: "JSON-RPC calls to the ledger endpoint",
		}, []string{"method", "status"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "xrplw_rpc_request_duration_seconds",
			Help:    "Latency of JSON-RPC calls to the ledger endpoint",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xrplw_payments_total",
			Help: "Payments by final result kind",
		}, []string{"result"}),
		confirmWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "xrplw_confirmation_wait_seconds",
			Help:    "Time from submit until a final result was observed",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xrplw_http_requests_total",
			Help: "HTTP API requests",
		}, []string{"method", "path", "status"}),
		accountBalance: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "xrplw_account_balance_drops",
			Help: "Last observed validated balance per address",
		}, []string{"address"}),
		lastLedgerIndex: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "xrplw_validated_ledger_index",
			Help: "Last validated ledger index seen",
		}),
	}
	reg.MustRegister(
		m.rpcRequests, m.rpcDuration, m.payments, m.confirmWait,
		m.httpRequests, m.accountBalance, m.lastLedgerIndex,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRPC matches rpc.Observer.
func (m *Metrics) ObserveRPC(method, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(method, status).Inc()
	m.rpcDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObservePayment counts a finished payment.
func (m *Metrics) ObservePayment(result string) {
	if m == nil {
		return
	}
	m.payments.WithLabelValues(result).Inc()
}

// ObserveConfirmation records how long finality took.
func (m *Metrics) ObserveConfirmation(d time.Duration) {
	if m == nil {
		return
	}
	m.confirmWait.Observe(d.Seconds())
}

// ObserveHTTP counts an API request.
func (m *Metrics) ObserveHTTP(method, path, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, status).Inc()
}

// SetBalance records the latest balance for address.
func (m *Metrics) SetBalance(address string, drops uint64) {
	if m == nil {
		return
	}
	m.accountBalance.WithLabelValues(address).Set(float64(drops))
}

// SetLedgerIndex records the latest validated ledger index.
func (m *Metrics) SetLedgerIndex(idx uint32) {
	if m == nil {
		return
	}
	m.lastLedgerIndex.Set(float64(idx))
}
