package metrics

import "github.com/prometheus/client_golang/prometheus"

// Analysis orchestration Prometheus metrics.
var (
	AnalysisRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ideascope",
			Name:      "analysis_requests_total",
			Help:      "Total number of analysis requests",
		},
		[]string{"status"}, // "success" / "exhausted" / "canceled"
	)

	AnalysisProviderAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ideascope",
			Name:      "analysis_provider_attempts_total",
			Help:      "Provider call attempts by outcome",
		},
		[]string{"provider", "outcome"}, // "success" / "overloaded" / "malformed" / "error"
	)

	AnalysisProviderRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ideascope",
			Name:      "analysis_provider_retries_total",
			Help:      "Backoff retries against the same provider",
		},
		[]string{"provider"},
	)

	AnalysisProviderFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ideascope",
			Name:      "analysis_provider_fallbacks_total",
			Help:      "Transitions from one provider to the next in priority order",
		},
		[]string{"from", "to"},
	)

	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ideascope",
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end analysis duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"provider"},
	)
)

var analysisMetricsRegistered bool

// RegisterAnalysisMetrics registers Prometheus analysis metrics. Must be called once from main.
func RegisterAnalysisMetrics() {
	if analysisMetricsRegistered {
		return
	}
	prometheus.MustRegister(AnalysisRequestsTotal)
	prometheus.MustRegister(AnalysisProviderAttemptsTotal)
	prometheus.MustRegister(AnalysisProviderRetriesTotal)
	prometheus.MustRegister(AnalysisProviderFallbacksTotal)
	prometheus.MustRegister(AnalysisDuration)
	analysisMetricsRegistered = true
}
