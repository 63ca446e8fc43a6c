package trips

import (
	"math"
	"strconv"
	"testing"
	"time"
	_ "time/tzdata"
)

const minute = int64(60 * 1000)

type rawEvent struct {
	ts    int64
	trip  string
	zone  string
	attrs map[Attribute]string
}

func buildSeries(events ...rawEvent) Series {
	keys := DefaultKeys()
	series := Series{}

	for _, event := range events {
		ts := strconv.FormatInt(event.ts, 10)

		series[keys.TripID] = append(series[keys.TripID], Sample{TS: ts, Value: event.trip})
		series[keys.Location] = append(series[keys.Location], Sample{TS: ts, Value: event.zone})
		for attribute, value := range event.attrs {
			name := keys.Attributes[attribute]
			series[name] = append(series[name], Sample{TS: ts, Value: value})
		}
	}

	return series
}

func testOptions() Options {
	options := DefaultOptions()
	options.Location = time.UTC

	return options
}

func buildTable(t *testing.T, events ...rawEvent) Table {
	t.Helper()

	table, _, err := Normalize(buildSeries(events...), DefaultKeys(), time.UTC)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	return table
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
