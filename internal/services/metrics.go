package services

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	ChatRequests    prometheus.Counter
	ChatResponses   *prometheus.CounterVec
	Captures        prometheus.Counter
	ProviderLatency prometheus.Histogram
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// InitMetrics initializes the Prometheus metrics. Safe to call more than
// once; registration happens a single time.
func InitMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			ChatRequests: promauto.NewCounter(prometheus.CounterOpts{
				Name: "gluebot_chat_requests_total",
				Help: "Total number of chat requests routed",
			}),

			// One label per routing stage; template/llm tag suffixes are
			// dropped to keep cardinality flat.
			ChatResponses: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "gluebot_chat_responses_total",
				Help: "Total number of chat responses by producing stage",
			}, []string{"stage"}),

			Captures: promauto.NewCounter(prometheus.CounterOpts{
				Name: "gluebot_knowledge_captures_total",
				Help: "Total number of questions captured as unresolved",
			}),

			ProviderLatency: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "gluebot_provider_request_duration_seconds",
				Help:    "LLM provider call latency in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30},
			}),
		}
	})
	return globalMetrics
}

// GetMetrics returns the global metrics instance, nil before InitMetrics.
func GetMetrics() *Metrics {
	return globalMetrics
}
