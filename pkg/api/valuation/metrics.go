package valuation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	engineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ipo_engine_runs_total",
		Help: "Waterfall runs handled, by endpoint.",
	}, []string{"endpoint"})

	engineErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ipo_engine_errors_total",
		Help: "Failed requests, by endpoint and kind (decode, valuation, internal).",
	}, []string{"endpoint", "kind"})

	engineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ipo_engine_duration_seconds",
		Help:    "Engine wall time per request.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"endpoint"})
)
