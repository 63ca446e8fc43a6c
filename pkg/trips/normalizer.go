package trips

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/slices"
)

// Normalize flattens the per key series into one row per distinct timestamp.
// Within a key the first sample seen for a timestamp wins. Rows without a
// parseable trip id or timestamp are dropped and counted as malformed. A
// batch left with no rows is reported as ErrNoDataAvailable. Empty values are
// absent, so an empty sample never claims its timestamp.
func Normalize(series Series, keys Keys, loc *time.Location) (Table, Diagnostics, error) {
	var diagnostics Diagnostics

	if len(series) == 0 || len(series[keys.TripID]) == 0 || len(series[keys.Location]) == 0 {
		return Table{}, diagnostics, ErrNoDataAvailable
	}
	if loc == nil {
		loc = time.UTC
	}

	tripIDs := alignOnTimestamp(series[keys.TripID], &diagnostics)
	locations := alignOnTimestamp(series[keys.Location], &diagnostics)
	attributes := map[Attribute]map[int64]string{}
	for attribute, key := range keys.Attributes {
		attributes[attribute] = alignOnTimestamp(series[key], &diagnostics)
	}

	timestamps := unionTimestamps(tripIDs, locations, attributes)
	diagnostics.RowsIn = len(timestamps)

	table := make(Table, 0, len(timestamps))
	for _, ts := range timestamps {
		tripID, ok := parseTripID(tripIDs[ts])
		if !ok {
			diagnostics.MalformedRows++
			continue
		}

		event := Event{
			TripID:     tripID,
			Timestamp:  ts,
			LocalTime:  time.UnixMilli(ts).In(loc),
			Zone:       locations[ts],
			VisitLabel: locations[ts],
			Attributes: Attributes{},
		}
		for attribute, values := range attributes {
			if value, exists := values[ts]; exists {
				event.Attributes[attribute] = value
			}
		}

		table = append(table, event)
	}

	if len(table) == 0 {
		return table, diagnostics, ErrNoDataAvailable
	}

	return table, diagnostics, nil
}

func alignOnTimestamp(samples []Sample, diagnostics *Diagnostics) map[int64]string {
	aligned := make(map[int64]string, len(samples))

	for _, sample := range samples {
		ts, ok := parseTimestamp(sample.TS)
		if !ok {
			diagnostics.MalformedRows++
			continue
		}
		if sample.Value == "" {
			continue
		}
		if _, exists := aligned[ts]; exists {
			diagnostics.DuplicateSamples++
			continue
		}

		aligned[ts] = sample.Value
	}

	return aligned
}

func unionTimestamps(tripIDs map[int64]string, locations map[int64]string, attributes map[Attribute]map[int64]string) []int64 {
	seen := map[int64]bool{}
	var timestamps []int64

	add := func(values map[int64]string) {
		for ts := range values {
			if !seen[ts] {
				seen[ts] = true
				timestamps = append(timestamps, ts)
			}
		}
	}

	add(tripIDs)
	add(locations)
	for _, values := range attributes {
		add(values)
	}

	slices.Sort(timestamps)

	return timestamps
}

func parseTimestamp(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	if ts, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return ts, ts >= 0
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}

	return int64(f), true
}

// parseTripID accepts integer ids, including ones serialized as integral
// floats ("2000000001.0").
func parseTripID(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return id, true
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}

	return int64(f), true
}
