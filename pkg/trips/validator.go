package trips

// IsCompleteTrip reports whether a trip has an entry and an exit, with the
// earliest entry strictly before the latest exit.
func IsCompleteTrip(events []Event, labels Labels) bool {
	var firstEntry, lastExit int64
	hasEntry, hasExit := false, false

	for _, event := range events {
		switch event.Zone {
		case labels.Entry:
			if !hasEntry || event.Timestamp < firstEntry {
				firstEntry = event.Timestamp
			}
			hasEntry = true
		case labels.Exit:
			if !hasExit || event.Timestamp > lastExit {
				lastExit = event.Timestamp
			}
			hasExit = true
		}
	}

	return hasEntry && hasExit && firstEntry < lastExit
}

// ValidateTrips keeps every row of complete trips and drops incomplete trips
// entirely. It returns the filtered table and the number of trips dropped.
func ValidateTrips(table Table, labels Labels) (Table, int) {
	groups, order := table.GroupByTrip()

	keep := map[int64]bool{}
	dropped := 0
	for _, tripID := range order {
		events := make([]Event, 0, len(groups[tripID]))
		for _, i := range groups[tripID] {
			events = append(events, table[i])
		}

		if IsCompleteTrip(events, labels) {
			keep[tripID] = true
		} else {
			dropped++
		}
	}

	out := make(Table, 0, len(table))
	for _, event := range table {
		if keep[event.TripID] {
			out = append(out, event)
		}
	}

	return out, dropped
}
