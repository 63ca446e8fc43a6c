package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/jpuchoc/st-report/pkg/cachedresults"
	"github.com/jpuchoc/st-report/pkg/trips"
)

// TimeRange is a half open [StartMs, EndMs) interval in epoch milliseconds.
type TimeRange struct {
	StartMs int64
	EndMs   int64
}

// LastDays covers the n days up to now.
func LastDays(now time.Time, days int) TimeRange {
	end := now.UnixMilli()

	return TimeRange{
		StartMs: end - int64(days)*24*int64(time.Hour/time.Millisecond),
		EndMs:   end,
	}
}

func (r TimeRange) String() string {
	return fmt.Sprintf("%s/%s", time.UnixMilli(r.StartMs).UTC().Format(time.RFC3339), time.UnixMilli(r.EndMs).UTC().Format(time.RFC3339))
}

// Fetcher returns every sample of the tracked keys inside a time range. A
// failed fetch is reported as an error wrapping trips.ErrDataUnavailable.
type Fetcher interface {
	FetchEvents(ctx context.Context, timeRange TimeRange) (trips.Series, error)
}

// CachedFetcher memoizes another fetcher. Entries are keyed on the range
// length only: a trailing window fetched within the TTL is served from cache
// even though its end has moved.
type CachedFetcher struct {
	Fetcher Fetcher
	Cache   *cachedresults.Cache
	Prefix  string
}

func (c *CachedFetcher) FetchEvents(ctx context.Context, timeRange TimeRange) (trips.Series, error) {
	key := c.key(timeRange)

	return cachedresults.Memoize(ctx, c.Cache, key, func(ctx context.Context) (trips.Series, error) {
		return c.Fetcher.FetchEvents(ctx, timeRange)
	})
}

func (c *CachedFetcher) key(timeRange TimeRange) string {
	return fmt.Sprintf("%s:events:%d", c.Prefix, timeRange.EndMs-timeRange.StartMs)
}
