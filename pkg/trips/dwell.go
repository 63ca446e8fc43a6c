package trips

import (
	"time"

	"golang.org/x/exp/slices"
)

const (
	millisPerMinute = 60 * 1000
	millisPerHour   = 60 * millisPerMinute
)

// Visit is an event reinterpreted as the interval until the trip's next event.
// The duration belongs to the zone being left.
type Visit struct {
	Event
	DurationMinutes float64
}

// TripTimes is the entry/exit record of a trip.
type TripTimes struct {
	TripID int64

	EntryTimestamp int64
	ExitTimestamp  int64
	EntryTime      time.Time
	ExitTime       time.Time

	PermanenceHours float64
}

// ComputeTripTimes finds the first entry and last exit of every trip that has
// both, and the elapsed hours between them.
func ComputeTripTimes(table Table, labels Labels, loc *time.Location) map[int64]TripTimes {
	if loc == nil {
		loc = time.UTC
	}

	entries := map[int64]int64{}
	exits := map[int64]int64{}

	for _, event := range table {
		switch event.Zone {
		case labels.Entry:
			if ts, exists := entries[event.TripID]; !exists || event.Timestamp < ts {
				entries[event.TripID] = event.Timestamp
			}
		case labels.Exit:
			if ts, exists := exits[event.TripID]; !exists || event.Timestamp > ts {
				exits[event.TripID] = event.Timestamp
			}
		}
	}

	times := map[int64]TripTimes{}
	for tripID, entry := range entries {
		exit, exists := exits[tripID]
		if !exists {
			continue
		}

		times[tripID] = TripTimes{
			TripID:          tripID,
			EntryTimestamp:  entry,
			ExitTimestamp:   exit,
			EntryTime:       time.UnixMilli(entry).In(loc),
			ExitTime:        time.UnixMilli(exit).In(loc),
			PermanenceHours: float64(exit-entry) / millisPerHour,
		}
	}

	return times
}

// SortByTrip returns a copy of the table ordered by trip id then timestamp.
func SortByTrip(table Table) Table {
	sorted := make(Table, len(table))
	copy(sorted, table)

	slices.SortStableFunc(sorted, func(a, b Event) int {
		switch {
		case a.TripID != b.TripID:
			return compareInt64(a.TripID, b.TripID)
		default:
			return compareInt64(a.Timestamp, b.Timestamp)
		}
	})

	return sorted
}

// ComputeDwell turns each event into a visit lasting until the next event of
// the same trip. The final event of a trip has no successor and yields no
// visit. Negative durations are dropped; zero durations are kept.
func ComputeDwell(table Table) ([]Visit, Diagnostics) {
	var diagnostics Diagnostics

	sorted := SortByTrip(table)
	visits := make([]Visit, 0, len(sorted))

	for i, event := range sorted {
		if i+1 >= len(sorted) || sorted[i+1].TripID != event.TripID {
			diagnostics.DroppedFinalEvents++
			continue
		}

		duration := float64(sorted[i+1].Timestamp-event.Timestamp) / millisPerMinute
		if duration < 0 {
			diagnostics.NegativeDurations++
			continue
		}

		visits = append(visits, Visit{
			Event:           event,
			DurationMinutes: duration,
		})
	}

	return visits, diagnostics
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
