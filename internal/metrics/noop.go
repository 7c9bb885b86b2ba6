package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// NoopMetrics is a no-operation implementation of the Metrics interface for testing.
type NoopMetrics struct{}

// NewNoopMetrics creates a new instance of NoopMetrics.
func NewNoopMetrics() Metrics {
	return &NoopMetrics{}
}

// GetRegistry returns a new empty registry.
func (m *NoopMetrics) GetRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func (m *NoopMetrics) SetActivePools(int)                              {}
func (m *NoopMetrics) SetContextRecords(int)                           {}
func (m *NoopMetrics) IncrementOpenSessions()                          {}
func (m *NoopMetrics) DecrementOpenSessions()                          {}
func (m *NoopMetrics) ObserveEstablishment(string, string)             {}
func (m *NoopMetrics) ObserveClose(string, string)                     {}
func (m *NoopMetrics) ObserveAPIRequest(string, string, string, float64) {}
