// Package metrics exposes the orchestrator's Prometheus metrics. Everything
// is registered through promauto on the default registry and served by the
// API server on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IntentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orchestrator_intents_created_total",
		Help: "The total number of intents created",
	}, []string{"from_chain", "to_chain"})

	IntentsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orchestrator_intents_executed_total",
		Help: "The total number of intents that entered execution",
	}, []string{"from_chain", "to_chain"})

	IntentsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orchestrator_intents_cancelled_total",
		Help: "The total number of intents cancelled",
	})

	IntentsTerminal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orchestrator_intents_terminal_total",
		Help: "Intents reaching a terminal status",
	}, []string{"status"})

	RouteDiscoveryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "orchestrator_route_discovery_seconds",
		Help:    "Time spent discovering and ranking routes",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	RoutesFound = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "orchestrator_routes_found",
		Help:    "Number of viable routes per discovery call",
		Buckets: prometheus.LinearBuckets(0, 1, 10),
	})

	ProviderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orchestrator_provider_errors_total",
		Help: "Quote provider failures, isolated per provider",
	}, []string{"provider"})

	ProviderQuoteDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orchestrator_provider_quote_seconds",
		Help:    "Per-provider quote latency",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"provider"})

	QuoteCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orchestrator_quote_cache_total",
		Help: "Quote cache lookups by outcome",
	}, []string{"outcome"})

	HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "orchestrator_health_check_up",
		Help: "Last observed status per dependency (1 healthy, 0.5 degraded, 0 unhealthy)",
	}, []string{"dependency"})
)
