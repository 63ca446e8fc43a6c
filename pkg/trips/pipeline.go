package trips

import (
	"errors"
	"fmt"
	"time"
)

type RunStatus int

const (
	StatusNotRun RunStatus = iota
	StatusOK
	StatusDataUnavailable
	StatusNoValidTrips
)

func (s RunStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDataUnavailable:
		return "data_unavailable"
	case StatusNoValidTrips:
		return "no_valid_trips"
	default:
		return "not_run"
	}
}

func (s RunStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// TripIDRange bounds valid trip identifiers, both ends inclusive. A zero
// range accepts every id.
type TripIDRange struct {
	Min int64 `yaml:"min"`
	Max int64 `yaml:"max"`
}

func (r TripIDRange) Contains(tripID int64) bool {
	if r.Min == 0 && r.Max == 0 {
		return true
	}

	return tripID >= r.Min && tripID <= r.Max
}

type Options struct {
	Keys        Keys
	Labels      Labels
	Aliases     map[string]string
	UnloadZones []string
	TripIDRange TripIDRange
	Location    *time.Location
}

func DefaultOptions() Options {
	loc, err := time.LoadLocation("America/Lima")
	if err != nil {
		loc = time.UTC
	}

	return Options{
		Keys:        DefaultKeys(),
		Labels:      DefaultLabels(),
		Aliases:     DefaultLabelAliases(),
		UnloadZones: DefaultUnloadZones(),
		TripIDRange: TripIDRange{Min: 2000000000, Max: 2999999999},
		Location:    loc,
	}
}

// Result is the outcome of one run. The zero value reports StatusNotRun.
type Result struct {
	Status      RunStatus
	Table       SummaryTable
	Diagnostics Diagnostics
	Err         error

	GeneratedAt time.Time
}

func (r Result) Empty() bool {
	return r.Table.Len() == 0
}

// Unavailable builds the result of a run abandoned because the events could
// not be fetched.
func Unavailable(err error) Result {
	if err == nil {
		err = ErrNoDataAvailable
	}

	return Result{
		Status:      StatusDataUnavailable,
		Err:         fmt.Errorf("%w: %w", ErrDataUnavailable, err),
		GeneratedAt: time.Now(),
	}
}

type Pipeline struct {
	Options Options
}

func NewPipeline(options Options) *Pipeline {
	if options.Location == nil {
		options.Location = time.UTC
	}

	return &Pipeline{Options: options}
}

// Run takes a snapshot of raw series through every stage in order and returns
// the rounded summary table. The series is only read.
func (p *Pipeline) Run(series Series) Result {
	result := Result{GeneratedAt: time.Now()}

	visits, attributes, times, diagnostics, err := p.visits(series)
	result.Diagnostics = diagnostics
	if err != nil {
		result.Err = err
		if errors.Is(err, ErrNoValidTrips) {
			result.Status = StatusNoValidTrips
		} else {
			result.Status = StatusDataUnavailable
		}
		return result
	}

	table := Pivot(visits, attributes, times, p.Options.UnloadZones)

	inRange := table.Rows[:0:0]
	for _, row := range table.Rows {
		if p.Options.TripIDRange.Contains(row.TripID) {
			inRange = append(inRange, row)
		} else {
			result.Diagnostics.TripsOutOfRange++
		}
	}
	table.Rows = inRange

	if len(table.Rows) == 0 {
		result.Status = StatusNoValidTrips
		result.Err = fmt.Errorf("%w: all trips outside id range %d-%d", ErrNoValidTrips, p.Options.TripIDRange.Min, p.Options.TripIDRange.Max)
		return result
	}

	result.Status = StatusOK
	result.Table = table.Rounded()
	result.Diagnostics.TripsSummarized = len(table.Rows)

	return result
}

// Inspect runs the stages up to disambiguation and returns the visits of one
// trip in timestamp order.
func (p *Pipeline) Inspect(series Series, tripID int64) ([]Visit, Diagnostics, error) {
	visits, _, _, diagnostics, err := p.visits(series)
	if err != nil {
		return nil, diagnostics, err
	}

	var trip []Visit
	for _, visit := range visits {
		if visit.TripID == tripID {
			trip = append(trip, visit)
		}
	}

	return trip, diagnostics, nil
}

func (p *Pipeline) visits(series Series) ([]Visit, map[int64]Attributes, map[int64]TripTimes, Diagnostics, error) {
	options := p.Options

	table, diagnostics, err := Normalize(series, options.Keys, options.Location)
	if err != nil {
		return nil, nil, nil, diagnostics, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}

	table = Backfill(table, options.Labels.Exit)
	table = CanonicalizeLabels(table, options.Aliases)

	table, diagnostics.IncompleteTrips = ValidateTrips(table, options.Labels)
	if len(table) == 0 {
		return nil, nil, nil, diagnostics, fmt.Errorf("%w: no complete trips in %d rows", ErrNoValidTrips, diagnostics.RowsIn)
	}

	times := ComputeTripTimes(table, options.Labels, options.Location)

	visits, dwellDiagnostics := ComputeDwell(table)
	diagnostics.Add(dwellDiagnostics)

	visits = Disambiguate(visits, options.Labels)

	return visits, TripAttributes(table), times, diagnostics, nil
}
