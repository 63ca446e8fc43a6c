package trips

import (
	"golang.org/x/exp/slices"
)

// TripAttributes picks one attribute record per trip: the first row of the
// trip in timestamp order.
func TripAttributes(table Table) map[int64]Attributes {
	attributes := map[int64]Attributes{}

	for _, event := range SortByTrip(table) {
		if _, exists := attributes[event.TripID]; !exists {
			attributes[event.TripID] = event.Attributes.Clone()
		}
	}

	return attributes
}

// Pivot sums visit minutes per trip and visit label into one row per trip,
// with one column per label observed anywhere in the batch. Visits with no
// label are left out. Attributes and trip times are joined in, and the unload
// duration is the sum of whichever unload zone columns exist in this batch,
// in hours.
func Pivot(visits []Visit, attributes map[int64]Attributes, times map[int64]TripTimes, unloadZones []string) SummaryTable {
	minutes := map[int64]map[string]float64{}
	var tripIDs []int64
	var columns []string

	for _, visit := range visits {
		// Rows without a location only bound their neighbours' durations.
		if visit.VisitLabel == "" {
			continue
		}

		zones, exists := minutes[visit.TripID]
		if !exists {
			zones = map[string]float64{}
			minutes[visit.TripID] = zones
			tripIDs = append(tripIDs, visit.TripID)
		}
		zones[visit.VisitLabel] += visit.DurationMinutes

		if !slices.Contains(columns, visit.VisitLabel) {
			columns = append(columns, visit.VisitLabel)
		}
	}

	slices.Sort(tripIDs)
	slices.Sort(columns)

	var unloadColumns []string
	for _, zone := range unloadZones {
		if slices.Contains(columns, zone) && !slices.Contains(unloadColumns, zone) {
			unloadColumns = append(unloadColumns, zone)
		}
	}

	table := SummaryTable{
		Columns: columns,
		Rows:    make([]TripSummary, 0, len(tripIDs)),
	}

	for _, tripID := range tripIDs {
		row := TripSummary{
			TripID:     tripID,
			Attributes: attributes[tripID].Clone(),
			Zones:      make(map[string]float64, len(columns)),
		}
		row.VehicleType = row.Attributes.Get(AttributeType)
		row.Company = row.Attributes.Get(AttributeCompany)

		for _, column := range columns {
			row.Zones[column] = minutes[tripID][column]
		}

		if tripTimes, exists := times[tripID]; exists {
			row.EntryTime = tripTimes.EntryTime
			row.ExitTime = tripTimes.ExitTime
			row.PermanenceHours = tripTimes.PermanenceHours
		}

		unloadMinutes := 0.0
		for _, column := range unloadColumns {
			unloadMinutes += row.Zones[column]
		}
		row.UnloadHours = unloadMinutes / 60

		table.Rows = append(table.Rows, row)
	}

	return table
}
