package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jpuchoc/st-report/pkg/trips"
)

// FileSource serves a timeseries response saved to disk. The time range is
// ignored; the whole snapshot is returned.
type FileSource struct {
	Path string
}

func (f *FileSource) FetchEvents(ctx context.Context, timeRange TimeRange) (trips.Series, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", trips.ErrDataUnavailable, err)
	}
	defer file.Close()

	var series trips.Series
	if err := json.NewDecoder(file).Decode(&series); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", trips.ErrDataUnavailable, f.Path, err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: %s holds no series", trips.ErrDataUnavailable, f.Path)
	}

	return series, nil
}
