package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics are registered on the server's own registry so that several
// servers can live in one process.
type metrics struct {
	// analyses counts analyses by language and outcome (ok, parse_error).
	analyses *prometheus.CounterVec

	// duration measures analysis latency by language.
	duration *prometheus.HistogramVec

	// score tracks the distribution of overall scores by language.
	score *prometheus.HistogramVec

	// requests counts HTTP requests by route and status code.
	requests *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		analyses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codepulse",
			Name:      "analyses_total",
			Help:      "Total analyses by language and outcome",
		}, []string{"language", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "codepulse",
			Name:      "analysis_duration_seconds",
			Help:      "Analysis latency in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"language"}),
		score: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "codepulse",
			Name:      "overall_score",
			Help:      "Distribution of overall quality scores",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}, []string{"language"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codepulse",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by route and status",
		}, []string{"route", "status"}),
	}
}
