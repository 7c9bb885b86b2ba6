package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	MetricsNamespace        = "mcpool"
	MetricsSubsystemPools   = "pools"
	MetricsSubsystemSession = "sessions"
	MetricsSubsystemAPI     = "api"

	// Result label values.
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics is the instrumentation surface used by the session manager and
// the admin API.
type Metrics interface {
	GetRegistry() *prometheus.Registry

	SetActivePools(count int)
	SetContextRecords(count int)

	IncrementOpenSessions()
	DecrementOpenSessions()
	ObserveEstablishment(server, result string)
	ObserveClose(server, result string)

	ObserveAPIRequest(handler, method, statusCode string, elapsed float64)
}

type metrics struct {
	registry *prometheus.Registry

	poolsActive    prometheus.Gauge
	contextRecords prometheus.Gauge
	sessionsOpen   prometheus.Gauge

	establishmentsTotal *prometheus.CounterVec
	closesTotal         *prometheus.CounterVec

	apiTime *prometheus.HistogramVec
}

// NewMetrics creates a collector set on its own registry, including the
// standard process and Go runtime collectors.
func NewMetrics() Metrics {
	m := &metrics{}

	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{
		Namespace: MetricsNamespace,
	}))
	m.registry.MustRegister(collectors.NewGoCollector())

	m.poolsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemPools,
		Name:      "active",
		Help:      "The number of connection pools currently registered.",
	})
	m.registry.MustRegister(m.poolsActive)

	m.contextRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemSession,
		Name:      "context_records",
		Help:      "The number of (user, project) context records.",
	})
	m.registry.MustRegister(m.contextRecords)

	m.sessionsOpen = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemSession,
		Name:      "open",
		Help:      "The number of open MCP sessions across all pools.",
	})
	m.registry.MustRegister(m.sessionsOpen)

	m.establishmentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemSession,
		Name:      "establishments_total",
		Help:      "The total number of session establishment attempts.",
	}, []string{"server", "result"})
	m.registry.MustRegister(m.establishmentsTotal)

	m.closesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemSession,
		Name:      "closes_total",
		Help:      "The total number of session releases.",
	}, []string{"server", "result"})
	m.registry.MustRegister(m.closesTotal)

	m.apiTime = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemAPI,
		Name:      "time_seconds",
		Help:      "Time to execute the admin API handlers.",
	}, []string{"handler", "method", "status_code"})
	m.registry.MustRegister(m.apiTime)

	return m
}

func (m *metrics) GetRegistry() *prometheus.Registry {
	return m.registry
}

func (m *metrics) SetActivePools(count int) {
	m.poolsActive.Set(float64(count))
}

func (m *metrics) SetContextRecords(count int) {
	m.contextRecords.Set(float64(count))
}

func (m *metrics) IncrementOpenSessions() {
	m.sessionsOpen.Inc()
}

func (m *metrics) DecrementOpenSessions() {
	m.sessionsOpen.Dec()
}

func (m *metrics) ObserveEstablishment(server, result string) {
	m.establishmentsTotal.With(prometheus.Labels{"server": server, "result": result}).Inc()
}

func (m *metrics) ObserveClose(server, result string) {
	m.closesTotal.With(prometheus.Labels{"server": server, "result": result}).Inc()
}

func (m *metrics) ObserveAPIRequest(handler, method, statusCode string, elapsed float64) {
	m.apiTime.With(prometheus.Labels{"handler": handler, "method": method, "status_code": statusCode}).Observe(elapsed)
}
