// Package observability exposes Prometheus metrics for the application.
package observability

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// SessionEventStreams is the gauge of open session-event websocket streams.
	SessionEventStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "folio_session_event_streams",
		Help: "Number of active session event websocket connections",
	})

	// PortfolioLoads counts full snapshot loads by outcome.
	PortfolioLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_portfolio_loads_total",
		Help: "Total number of portfolio snapshot loads by outcome",
	}, []string{"outcome"})
)

var (
	promOnce sync.Once
	promInst *fiberprometheus.FiberPrometheus
)

// HTTPMetrics returns the process-wide fiberprometheus middleware instance.
// Collectors register against the default registry, so creation happens once
// even when multiple servers are constructed in the same process (tests).
func HTTPMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promInst = fiberprometheus.New(serviceName)
	})
	return promInst
}
