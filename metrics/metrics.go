package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Forecast API metrics
var (
	// ForecastRequestsTotal tracks requests sent to the forecast API
	ForecastRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_requests_total",
			Help: "Total number of forecast API requests",
		},
		[]string{"status"},
	)

	// ForecastRequestDuration tracks the round trip time of forecast requests
	ForecastRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forecast_request_duration_seconds",
			Help:    "Duration of forecast API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ForecastCacheLookupsTotal tracks forecast cache hits and misses
	ForecastCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_cache_lookups_total",
			Help: "Total number of forecast cache lookups",
		},
		[]string{"result"},
	)
)

// Pipeline metrics
var (
	// CityOutcomesTotal counts processed cities by outcome
	CityOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_city_outcomes_total",
			Help: "Total number of processed cities by outcome",
		},
		[]string{"status"},
	)

	// ChartsRenderedTotal counts chart images written
	ChartsRenderedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forecast_charts_rendered_total",
			Help: "Total number of forecast charts written to disk",
		},
	)
)

// RecordForecastRequest records a forecast API call
func RecordForecastRequest(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ForecastRequestsTotal.WithLabelValues(status).Inc()
	ForecastRequestDuration.Observe(duration.Seconds())
}

// RecordCacheLookup records a cache hit or miss
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	ForecastCacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordCityOutcome records the result of processing one city
func RecordCityOutcome(status string) {
	CityOutcomesTotal.WithLabelValues(status).Inc()
}

// WriteTextfile writes every registered metric to path in the text exposition
// format, for pickup by node_exporter's textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
