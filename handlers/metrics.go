package handlers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"greenhouse-forecaster/analytics"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	forecastRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_runs_total",
			Help: "Forecast attempts per channel by outcome",
		},
		[]string{"channel", "outcome"},
	)

	forecastLastPublished = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "forecast_last_published_timestamp_seconds",
			Help: "Unix time of the last published forecast per channel",
		},
		[]string{"channel"},
	)
)

// RecordOutcome is an analytics.OutcomeCallback feeding the forecast metrics.
func RecordOutcome(channel string, outcome analytics.Outcome) {
	forecastRunsTotal.WithLabelValues(channel, string(outcome)).Inc()
	if outcome == analytics.OutcomePublished {
		forecastLastPublished.WithLabelValues(channel).Set(float64(time.Now().Unix()))
	}
}
