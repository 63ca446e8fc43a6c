package trips

import (
	"golang.org/x/exp/slices"
)

// Disambiguate splits repeated visits to the weighing zone into an initial and
// a final visit, and relabels the transit leg directly preceding each of them.
// A trip with a single weighing visit gets an initial label only.
//
// Relabels are collected per trip into a position → label map first and then
// applied in one pass over a copy of the input, so no decision ever observes a
// label written by an earlier one.
func Disambiguate(visits []Visit, labels Labels) []Visit {
	relabels := map[int]string{}

	for _, positions := range groupVisitsByTrip(visits) {
		for position, label := range tripRelabels(visits, positions, labels) {
			relabels[position] = label
		}
	}

	out := make([]Visit, len(visits))
	copy(out, visits)
	for position, label := range relabels {
		out[position].VisitLabel = label
	}

	return out
}

// groupVisitsByTrip returns the positions of each trip's visits ordered by
// timestamp, ties kept in input order.
func groupVisitsByTrip(visits []Visit) map[int64][]int {
	groups := map[int64][]int{}
	for i, visit := range visits {
		groups[visit.TripID] = append(groups[visit.TripID], i)
	}

	for _, positions := range groups {
		slices.SortStableFunc(positions, func(a, b int) int {
			return compareInt64(visits[a].Timestamp, visits[b].Timestamp)
		})
	}

	return groups
}

func tripRelabels(visits []Visit, positions []int, labels Labels) map[int]string {
	relabels := map[int]string{}

	var weighings []int
	for _, position := range positions {
		if visits[position].Zone == labels.Weighing {
			weighings = append(weighings, position)
		}
	}
	if len(weighings) == 0 {
		return relabels
	}

	first := weighings[0]
	relabels[first] = labels.WeighingInitial()
	if leg, found := precedingTransit(visits, positions, first, labels); found {
		relabels[leg] = labels.TransitInitial()
	}

	if len(weighings) < 2 {
		return relabels
	}

	last := weighings[len(weighings)-1]
	relabels[last] = labels.WeighingFinal()
	if leg, found := precedingTransit(visits, positions, last, labels); found {
		relabels[leg] = labels.TransitFinal()
	}

	return relabels
}

// precedingTransit finds the visit chronologically nearest before target,
// considering only visits with a strictly earlier timestamp, and reports it if
// it is a transit leg towards the weighing zone.
func precedingTransit(visits []Visit, positions []int, target int, labels Labels) (int, bool) {
	cutoff := visits[target].Timestamp

	nearest := -1
	for _, position := range positions {
		if visits[position].Timestamp >= cutoff {
			break
		}
		nearest = position
	}

	if nearest < 0 || visits[nearest].Zone != labels.TransitToWeighing {
		return 0, false
	}

	return nearest, true
}
