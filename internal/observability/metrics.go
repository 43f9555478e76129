package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec
	submissionsTotal   *prometheus.CounterVec
	analysesTotal      *prometheus.CounterVec
	contestTransitions *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 15.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contest_submissions_total",
			Help: "Accepted contest submissions by analysis outcome.",
		}, []string{"analysis_status"})

		analysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plagiarism_analyses_total",
			Help: "Plagiarism analyses by outcome.",
		}, []string{"status"})

		contestTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contest_transitions_total",
			Help: "Contest lifecycle transitions.",
		}, []string{"to"})

		prometheus.MustRegister(httpRequestsTotal, httpLatencySeconds, httpErrorsTotal, submissionsTotal, analysesTotal, contestTransitions)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// Submissions exposes the accepted submission counter.
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// Analyses exposes the analysis outcome counter.
func Analyses() *prometheus.CounterVec {
	RegisterMetrics()
	return analysesTotal
}

// ContestTransitions exposes the lifecycle transition counter.
func ContestTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return contestTransitions
}
