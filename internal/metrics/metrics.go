package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Weather feed metrics
var (
	// FeedFetchesTotal tracks the number of outbound feed requests
	FeedFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_feed_fetches_total",
			Help: "Total number of weather feed fetches",
		},
		[]string{"provider", "status"},
	)

	// FeedFetchDuration tracks how long a feed fetch took, parsing included
	FeedFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weather_feed_fetch_duration_seconds",
			Help:    "Duration of weather feed fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// FeedObservations is the number of values the last aggregation averaged
	FeedObservations = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "weather_feed_observations",
			Help: "Number of observations used by the most recent aggregation",
		},
		[]string{"provider", "parameter"},
	)
)

// Prediction metrics
var (
	// PredictionsTotal tracks predictions served per region
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accident_predictions_total",
			Help: "Total number of accident predictions computed",
		},
		[]string{"region", "status"},
	)

	// LastPrediction holds the most recent predicted accident count
	LastPrediction = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "accident_prediction_last",
			Help: "Most recent predicted monthly accident count",
		},
		[]string{"region"},
	)

	// LastDeviation holds the most recent percentage deviation from the baseline
	LastDeviation = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "accident_prediction_deviation_percent",
			Help: "Most recent prediction deviation from the historical monthly average, in percent",
		},
		[]string{"region"},
	)

	// AppStartTime records when the application started
	AppStartTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "accident_forecast_start_time_seconds",
			Help: "Unix timestamp of when the application started",
		},
	)
)

func init() {
	AppStartTime.SetToCurrentTime()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordFeedFetch records a single feed fetch
func RecordFeedFetch(provider string, duration time.Duration, err error) {
	FeedFetchesTotal.WithLabelValues(provider, status(err)).Inc()
	FeedFetchDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordObservations updates the observation gauges after an aggregation
func RecordObservations(provider string, temperatures, windSpeeds int) {
	FeedObservations.WithLabelValues(provider, "temperature").Set(float64(temperatures))
	FeedObservations.WithLabelValues(provider, "wind_speed").Set(float64(windSpeeds))
}

// RecordPrediction records the outcome of a prediction
func RecordPrediction(region string, prediction, deviation float64, err error) {
	PredictionsTotal.WithLabelValues(region, status(err)).Inc()
	if err != nil {
		return
	}
	LastPrediction.WithLabelValues(region).Set(prediction)
	LastDeviation.WithLabelValues(region).Set(deviation)
}
