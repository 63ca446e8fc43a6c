package trips

import (
	"math"
	"time"

	"golang.org/x/exp/slices"
)

// TripSummary is the aggregated record of one complete trip. Zone minutes are
// keyed by visit label; labels never visited by the trip read as 0.
type TripSummary struct {
	TripID int64 `groups:"basic" bson:"tripid"`

	VehicleType string     `groups:"basic"`
	Company     string     `groups:"basic"`
	Attributes  Attributes `groups:"detailed"`

	EntryTime time.Time `groups:"basic"`
	ExitTime  time.Time `groups:"basic"`

	PermanenceHours float64 `groups:"basic"`
	UnloadHours     float64 `groups:"basic"`

	Zones map[string]float64 `groups:"detailed"`
}

// Minutes returns the minutes spent under a visit label.
func (s TripSummary) Minutes(label string) float64 {
	return s.Zones[label]
}

// TotalZoneMinutes sums every zone column of the row.
func (s TripSummary) TotalZoneMinutes() float64 {
	total := 0.0
	for _, minutes := range s.Zones {
		total += minutes
	}

	return total
}

// SummaryTable is the pivoted output. Columns lists every visit label observed
// in the batch, so its contents depend on the data.
type SummaryTable struct {
	Columns []string
	Rows    []TripSummary
}

func (t SummaryTable) Len() int {
	return len(t.Rows)
}

func (t SummaryTable) Find(tripID int64) (TripSummary, bool) {
	for _, row := range t.Rows {
		if row.TripID == tripID {
			return row, true
		}
	}

	return TripSummary{}, false
}

// SortedByExit returns a copy with the most recent exits first.
func (t SummaryTable) SortedByExit() SummaryTable {
	out := t.Clone()
	slices.SortStableFunc(out.Rows, func(a, b TripSummary) int {
		return b.ExitTime.Compare(a.ExitTime)
	})

	return out
}

// Rounded returns a copy with every numeric value rounded to two decimals.
// Rounding happens once, on the final table.
func (t SummaryTable) Rounded() SummaryTable {
	out := t.Clone()

	for i := range out.Rows {
		row := &out.Rows[i]
		row.PermanenceHours = round2(row.PermanenceHours)
		row.UnloadHours = round2(row.UnloadHours)

		for label, minutes := range row.Zones {
			row.Zones[label] = round2(minutes)
		}
	}

	return out
}

// Filter returns a deep copy holding only the rows inside the window. The
// receiver is left untouched.
func (t SummaryTable) Filter(window Window, reference time.Time) SummaryTable {
	var rows []TripSummary
	for _, row := range t.Rows {
		if WithinWindow(row, window, reference) {
			rows = append(rows, row)
		}
	}

	return SummaryTable{Columns: t.Columns, Rows: rows}.Clone()
}

// Clone returns a copy sharing no maps or slices with the receiver.
func (t SummaryTable) Clone() SummaryTable {
	out := SummaryTable{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]TripSummary, len(t.Rows)),
	}

	for i, row := range t.Rows {
		row.Attributes = row.Attributes.Clone()

		zones := make(map[string]float64, len(row.Zones))
		for label, minutes := range row.Zones {
			zones[label] = minutes
		}
		row.Zones = zones

		out.Rows[i] = row
	}

	return out
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
