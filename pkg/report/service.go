package report

import (
	"context"
	"time"

	"github.com/jpuchoc/st-report/pkg/cachedresults"
	"github.com/jpuchoc/st-report/pkg/config"
	"github.com/jpuchoc/st-report/pkg/metrics"
	"github.com/jpuchoc/st-report/pkg/redis_client"
	"github.com/jpuchoc/st-report/pkg/telemetry"
	"github.com/jpuchoc/st-report/pkg/trips"
	"github.com/rs/zerolog/log"
)

// Service fetches the trailing telemetry window and runs the pipeline over it.
type Service struct {
	Fetcher  telemetry.Fetcher
	Pipeline *trips.Pipeline

	WindowDays       int
	Display          trips.Display
	HighlightedZones []string

	Now func() time.Time
}

func NewService(cfg config.Config, fetcher telemetry.Fetcher) (*Service, error) {
	options, err := cfg.PipelineOptions()
	if err != nil {
		return nil, err
	}

	return &Service{
		Fetcher:          fetcher,
		Pipeline:         trips.NewPipeline(options),
		WindowDays:       cfg.Telemetry.WindowDays,
		Display:          cfg.Display,
		HighlightedZones: cfg.HighlightedZones,
		Now:              time.Now,
	}, nil
}

// NewFetcher picks the telemetry source from the configuration and wraps it
// in the Redis cache when a client is connected.
func NewFetcher(cfg config.Config) telemetry.Fetcher {
	var fetcher telemetry.Fetcher
	if cfg.Telemetry.File != "" {
		fetcher = &telemetry.FileSource{Path: cfg.Telemetry.File}
	} else {
		fetcher = telemetry.NewClient(cfg.Telemetry, cfg.Keys)
	}

	if redis_client.Client == nil {
		return fetcher
	}

	cache := &cachedresults.Cache{TTL: cfg.CacheTTL}
	cache.Setup(redis_client.Client)

	return &telemetry.CachedFetcher{
		Fetcher: fetcher,
		Cache:   cache,
		Prefix:  "streport:" + cfg.Telemetry.AssetID,
	}
}

func (s *Service) Location() *time.Location {
	return s.Pipeline.Options.Location
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}

	return s.Now()
}

func (s *Service) fetch(ctx context.Context) (trips.Series, error) {
	timeRange := telemetry.LastDays(s.now(), s.WindowDays)

	startTime := time.Now()
	series, err := s.Fetcher.FetchEvents(ctx, timeRange)
	metrics.ObserveFetch(time.Since(startTime))

	return series, err
}

// Run produces the summary table of the current window. Fetch failures come
// back as a data_unavailable result, never as a partial table.
func (s *Service) Run(ctx context.Context) trips.Result {
	series, err := s.fetch(ctx)

	var result trips.Result
	if err != nil {
		result = trips.Unavailable(err)
	} else {
		result = s.Pipeline.Run(series)
	}

	metrics.ObserveRun(result)

	logger := log.With().
		Str("status", result.Status.String()).
		Int("trips", result.Table.Len()).
		Int("rows", result.Diagnostics.RowsIn).
		Int("malformed", result.Diagnostics.MalformedRows).
		Int("incomplete", result.Diagnostics.IncompleteTrips).
		Int("outofrange", result.Diagnostics.TripsOutOfRange).
		Logger()

	switch result.Status {
	case trips.StatusOK:
		logger.Info().Msg("Pipeline run complete")
	case trips.StatusNoValidTrips:
		logger.Warn().Err(result.Err).Msg("Pipeline run found no valid trips")
	default:
		logger.Error().Err(result.Err).Msg("Pipeline run abandoned")
	}

	return result
}

// Window restricts a result's table to the named window, measured from the
// service clock.
func (s *Service) Window(table trips.SummaryTable, value string) (trips.SummaryTable, error) {
	window, err := trips.ParseWindow(value, s.Location())
	if err != nil {
		return trips.SummaryTable{}, err
	}

	return table.Filter(window, s.now()), nil
}

// Inspect returns the disambiguated visits of one trip in the current window.
func (s *Service) Inspect(ctx context.Context, tripID int64) ([]trips.Visit, trips.Diagnostics, error) {
	series, err := s.fetch(ctx)
	if err != nil {
		return nil, trips.Diagnostics{}, err
	}

	return s.Pipeline.Inspect(series, tripID)
}
