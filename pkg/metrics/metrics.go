package metrics

import (
	"time"

	"github.com/jpuchoc/st-report/pkg/trips"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "streport_pipeline_runs_total",
		Help: "Total number of pipeline runs by outcome.",
	}, []string{"status"})
	tripsSummarized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streport_trips_summarized_total",
		Help: "Total number of trips written to a summary table.",
	})
	tripsIncomplete = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streport_trips_incomplete_total",
		Help: "Total number of trips dropped for lacking an entry before an exit.",
	})
	tripsOutOfRange = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streport_trips_out_of_range_total",
		Help: "Total number of trips dropped by the trip id range filter.",
	})
	rowsMalformed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streport_rows_malformed_total",
		Help: "Total number of telemetry rows dropped for a bad timestamp or trip id.",
	})
	visitsNegative = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streport_visits_negative_duration_total",
		Help: "Total number of zone visits dropped for a negative duration.",
	})
	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "streport_fetch_duration_seconds",
		Help:    "Duration of a telemetry fetch, cache hits included.",
		Buckets: []float64{0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
	})
)

// ObserveRun records the outcome and diagnostics of one pipeline run.
func ObserveRun(result trips.Result) {
	pipelineRuns.WithLabelValues(result.Status.String()).Inc()

	diagnostics := result.Diagnostics
	tripsSummarized.Add(float64(diagnostics.TripsSummarized))
	tripsIncomplete.Add(float64(diagnostics.IncompleteTrips))
	tripsOutOfRange.Add(float64(diagnostics.TripsOutOfRange))
	rowsMalformed.Add(float64(diagnostics.MalformedRows))
	visitsNegative.Add(float64(diagnostics.NegativeDurations))
}

func ObserveFetch(duration time.Duration) {
	fetchDuration.Observe(duration.Seconds())
}
