package trips

// Backfill copies each trip's attributes from its earliest exit row onto every
// row of the trip that lacks them. Attribute values are only dependable at
// exit, so this reads "from the future" and is done in two passes: collect one
// record per trip, then broadcast it. Present values are never overwritten.
func Backfill(table Table, exitLabel string) Table {
	exitAttributes := map[int64]Attributes{}
	exitTimestamps := map[int64]int64{}

	for _, event := range table {
		if event.Zone != exitLabel {
			continue
		}

		if ts, exists := exitTimestamps[event.TripID]; exists && ts <= event.Timestamp {
			continue
		}
		exitTimestamps[event.TripID] = event.Timestamp
		exitAttributes[event.TripID] = event.Attributes
	}

	out := table.Clone()
	for i := range out {
		source, exists := exitAttributes[out[i].TripID]
		if !exists {
			continue
		}

		for attribute, value := range source {
			if _, present := out[i].Attributes[attribute]; !present {
				out[i].Attributes[attribute] = value
			}
		}
	}

	return out
}
