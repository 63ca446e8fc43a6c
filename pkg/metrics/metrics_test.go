package metrics

import (
	"testing"

	"github.com/jpuchoc/st-report/pkg/trips"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRun(t *testing.T) {
	before := testutil.ToFloat64(pipelineRuns.WithLabelValues("ok"))
	summarizedBefore := testutil.ToFloat64(tripsSummarized)

	ObserveRun(trips.Result{
		Status:      trips.StatusOK,
		Diagnostics: trips.Diagnostics{TripsSummarized: 4, IncompleteTrips: 1},
	})

	if got := testutil.ToFloat64(pipelineRuns.WithLabelValues("ok")) - before; got != 1 {
		t.Errorf("got %v new ok runs, want 1", got)
	}
	if got := testutil.ToFloat64(tripsSummarized) - summarizedBefore; got != 4 {
		t.Errorf("got %v summarized trips, want 4", got)
	}
}
