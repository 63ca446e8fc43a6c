package trips

import (
	"golang.org/x/exp/slices"
)

// TypeAverage is the mean minutes per zone across the trips of one vehicle
// type.
type TypeAverage struct {
	VehicleType string             `groups:"basic"`
	Trips       int                `groups:"basic"`
	Minutes     map[string]float64 `groups:"basic"`
}

// AverageByType averages every zone column per vehicle type. Types are
// returned sorted by name.
func AverageByType(table SummaryTable, zones []string) []TypeAverage {
	byType := map[string]*TypeAverage{}
	var types []string

	for _, row := range table.Rows {
		average, exists := byType[row.VehicleType]
		if !exists {
			average = &TypeAverage{VehicleType: row.VehicleType, Minutes: map[string]float64{}}
			byType[row.VehicleType] = average
			types = append(types, row.VehicleType)
		}

		average.Trips++
		for _, zone := range zones {
			average.Minutes[zone] += row.Zones[zone]
		}
	}

	slices.Sort(types)

	averages := make([]TypeAverage, 0, len(types))
	for _, vehicleType := range types {
		average := byType[vehicleType]
		for zone := range average.Minutes {
			average.Minutes[zone] /= float64(average.Trips)
		}
		averages = append(averages, *average)
	}

	return averages
}

// HighlightedMinutes sums, per vehicle type, the average minutes spent in the
// highlighted zones.
func HighlightedMinutes(averages []TypeAverage, highlighted []string) map[string]float64 {
	totals := map[string]float64{}

	for _, average := range averages {
		total := 0.0
		for _, zone := range highlighted {
			total += average.Minutes[zone]
		}
		totals[average.VehicleType] = total
	}

	return totals
}

type ZoneDetailRow struct {
	TripID    int64   `groups:"basic"`
	EntryTime string  `groups:"basic"`
	Company   string  `groups:"basic"`
	Minutes   float64 `groups:"basic"`
}

// ZoneDetailReport lists the minutes every trip of one vehicle type spent in
// one zone, longest first.
type ZoneDetailReport struct {
	VehicleType    string          `groups:"basic"`
	Zone           string          `groups:"basic"`
	AverageMinutes float64         `groups:"basic"`
	Trips          []ZoneDetailRow `groups:"basic"`
}

func ZoneDetail(table SummaryTable, vehicleType string, zone string, display Display) ZoneDetailReport {
	report := ZoneDetailReport{
		VehicleType: vehicleType,
		Zone:        zone,
		Trips:       []ZoneDetailRow{},
	}

	total := 0.0
	for _, row := range table.Rows {
		if row.VehicleType != vehicleType {
			continue
		}

		minutes := row.Zones[zone]
		total += minutes
		report.Trips = append(report.Trips, ZoneDetailRow{
			TripID:    row.TripID,
			EntryTime: display.formatTime(row.EntryTime),
			Company:   row.Company,
			Minutes:   minutes,
		})
	}

	if len(report.Trips) > 0 {
		report.AverageMinutes = total / float64(len(report.Trips))
	}

	slices.SortStableFunc(report.Trips, func(a, b ZoneDetailRow) int {
		switch {
		case a.Minutes > b.Minutes:
			return -1
		case a.Minutes < b.Minutes:
			return 1
		default:
			return 0
		}
	})

	return report
}

// VehicleTypes returns the distinct non empty vehicle types in the table.
func VehicleTypes(table SummaryTable) []string {
	var types []string
	for _, row := range table.Rows {
		if row.VehicleType != "" && !slices.Contains(types, row.VehicleType) {
			types = append(types, row.VehicleType)
		}
	}
	slices.Sort(types)

	return types
}

type OverviewStats struct {
	Trips        int `groups:"basic"`
	VehicleTypes int `groups:"basic"`
}

func Overview(table SummaryTable) OverviewStats {
	trips := map[int64]bool{}
	types := map[string]bool{}

	for _, row := range table.Rows {
		trips[row.TripID] = true
		types[row.VehicleType] = true
	}

	return OverviewStats{
		Trips:        len(trips),
		VehicleTypes: len(types),
	}
}
