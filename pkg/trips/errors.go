package trips

import "errors"

var (
	// ErrNoDataAvailable is returned by Normalize when the input has no usable
	// trip id or location series.
	ErrNoDataAvailable = errors.New("no telemetry data available")

	// ErrDataUnavailable marks a run abandoned because the fetch failed or
	// returned nothing.
	ErrDataUnavailable = errors.New("telemetry data unavailable")

	// ErrNoValidTrips marks a run where data was fetched but no trip survived
	// validation or the trip id range filter.
	ErrNoValidTrips = errors.New("no valid trips")
)

// Diagnostics counts the anomalies recovered locally during a run.
type Diagnostics struct {
	RowsIn             int
	MalformedRows      int
	DuplicateSamples   int
	IncompleteTrips    int
	NegativeDurations  int
	TripsOutOfRange    int
	TripsSummarized    int
	DroppedFinalEvents int
}

func (d *Diagnostics) Add(other Diagnostics) {
	d.RowsIn += other.RowsIn
	d.MalformedRows += other.MalformedRows
	d.DuplicateSamples += other.DuplicateSamples
	d.IncompleteTrips += other.IncompleteTrips
	d.NegativeDurations += other.NegativeDurations
	d.TripsOutOfRange += other.TripsOutOfRange
	d.TripsSummarized += other.TripsSummarized
	d.DroppedFinalEvents += other.DroppedFinalEvents
}
