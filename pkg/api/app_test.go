package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jpuchoc/st-report/pkg/config"
	"github.com/jpuchoc/st-report/pkg/report"
	"github.com/jpuchoc/st-report/pkg/telemetry"
	"github.com/jpuchoc/st-report/pkg/trips"
)

type stubFetcher struct {
	series trips.Series
	err    error
}

func (s *stubFetcher) FetchEvents(ctx context.Context, timeRange telemetry.TimeRange) (trips.Series, error) {
	return s.series, s.err
}

func snapshot() trips.Series {
	series := trips.Series{}
	add := func(ts int64, trip string, zone string, vehicleType string) {
		stamp := strconv.FormatInt(ts, 10)
		series["logs_nia"] = append(series["logs_nia"], trips.Sample{TS: stamp, Value: trip})
		series["logs_ubicacion"] = append(series["logs_ubicacion"], trips.Sample{TS: stamp, Value: zone})
		series["shared_tipo"] = append(series["shared_tipo"], trips.Sample{TS: stamp, Value: vehicleType})
	}

	// 2025-03-10 09:46:40 UTC onwards.
	add(1741600000000, "2000000001", "En Asignación", "Tolva")
	add(1741600600000, "2000000001", "Descarga", "Tolva")
	add(1741601800000, "2000000001", "Desasignación", "Tolva")

	add(1741600060000, "2000000002", "En Asignación", "Tolva")
	add(1741600120000, "2000000002", "Descarga", "Tolva")
	add(1741600720000, "2000000002", "Desasignación", "Tolva")

	return series
}

func newTestApp(t *testing.T, fetcher telemetry.Fetcher) *report.Service {
	t.Helper()

	cfg := config.Default()
	cfg.FacilityTimezone = "UTC"

	service, err := report.NewService(cfg, fetcher)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	service.Now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }

	return service
}

func get(t *testing.T, service *report.Service, target string) (int, map[string]any) {
	t.Helper()

	resp, err := NewApp(service).Test(httptest.NewRequest("GET", target, nil), -1)
	if err != nil {
		t.Fatalf("GET %s: %v", target, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil && !strings.HasPrefix(target, "/metrics") {
		t.Fatalf("GET %s returned %q: %v", target, body, err)
	}

	return resp.StatusCode, decoded
}

func TestVersion(t *testing.T) {
	status, body := get(t, newTestApp(t, &stubFetcher{}), "/report/version")

	if status != 200 || body["version"] == "" {
		t.Errorf("got %d %v", status, body)
	}
}

func TestListTrips(t *testing.T) {
	tests := []struct {
		name   string
		target string
		trips  int
		status int
	}{
		{"all", "/report/trips", 2, 200},
		{"current shift", "/report/trips?window=current-shift", 2, 200},
		{"previous shift", "/report/trips?window=previous-shift", 0, 200},
		{"trailing", "/report/trips?window=PT6H", 2, 200},
		{"unknown window", "/report/trips?window=fortnight", 0, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := get(t, newTestApp(t, &stubFetcher{series: snapshot()}), tt.target)

			if status != tt.status {
				t.Fatalf("got status %d, want %d: %v", status, tt.status, body)
			}
			if tt.status != 200 {
				return
			}

			rows, _ := body["trips"].([]any)
			if len(rows) != tt.trips {
				t.Errorf("got %d trips, want %d", len(rows), tt.trips)
			}
		})
	}
}

func TestListTripsDetail(t *testing.T) {
	service := newTestApp(t, &stubFetcher{series: snapshot()})

	_, basic := get(t, service, "/report/trips")
	_, detailed := get(t, service, "/report/trips?detail=true")

	basicRow := basic["trips"].([]any)[0].(map[string]any)
	detailedRow := detailed["trips"].([]any)[0].(map[string]any)

	if _, ok := basicRow["Zones"]; ok {
		t.Error("basic rows should not carry zone minutes")
	}
	if _, ok := detailedRow["Zones"]; !ok {
		t.Error("detailed rows should carry zone minutes")
	}

	// Most recent exit first: trip 2000000001 leaves last.
	if basicRow["TripID"].(float64) != 2000000001 {
		t.Errorf("got first trip %v", basicRow["TripID"])
	}
}

func TestGetTrip(t *testing.T) {
	service := newTestApp(t, &stubFetcher{series: snapshot()})

	status, body := get(t, service, "/report/trips/2000000001")
	if status != 200 {
		t.Fatalf("got status %d", status)
	}
	zones := body["Zones"].(map[string]any)
	if zones["Descarga"].(float64) != 20 {
		t.Errorf("got zones %v", zones)
	}

	if status, _ := get(t, service, "/report/trips/2000000099"); status != 404 {
		t.Errorf("got status %d for a missing trip, want 404", status)
	}
	if status, _ := get(t, service, "/report/trips/abc"); status != 400 {
		t.Errorf("got status %d for a bad identifier, want 400", status)
	}
}

func TestDataUnavailable(t *testing.T) {
	service := newTestApp(t, &stubFetcher{err: errors.New("connection refused")})

	status, body := get(t, service, "/report/trips")
	if status != 503 {
		t.Errorf("got status %d, want 503", status)
	}
	if body["status"] != "data_unavailable" {
		t.Errorf("got %v", body)
	}
}

func TestNoValidTrips(t *testing.T) {
	series := trips.Series{
		"logs_nia":       {{TS: "1741600000000", Value: "2000000001"}},
		"logs_ubicacion": {{TS: "1741600000000", Value: "Descarga"}},
	}

	status, body := get(t, newTestApp(t, &stubFetcher{series: series}), "/report/trips")
	if status != 200 {
		t.Fatalf("got status %d, want 200", status)
	}
	if body["status"] != "no_valid_trips" {
		t.Errorf("got status %v", body["status"])
	}
	if rows, _ := body["trips"].([]any); len(rows) != 0 {
		t.Errorf("got %d trips, want none", len(rows))
	}
}

func TestZoneAverages(t *testing.T) {
	status, body := get(t, newTestApp(t, &stubFetcher{series: snapshot()}), "/report/zones/averages")
	if status != 200 {
		t.Fatalf("got status %d", status)
	}

	highlighted := body["highlighted"].(map[string]any)
	if highlighted["Tolva"].(float64) != 15 {
		t.Errorf("got highlighted %v, want Tolva averaging 15 minutes", highlighted)
	}
}

func TestZoneDetail(t *testing.T) {
	service := newTestApp(t, &stubFetcher{series: snapshot()})

	status, body := get(t, service, "/report/zones/Descarga?type=Tolva")
	if status != 200 {
		t.Fatalf("got status %d", status)
	}
	rows := body["Trips"].([]any)
	if len(rows) != 2 || rows[0].(map[string]any)["Minutes"].(float64) != 20 {
		t.Errorf("got %v", rows)
	}

	if status, _ := get(t, service, "/report/zones/Descarga"); status != 400 {
		t.Errorf("got status %d without a type, want 400", status)
	}
}

func TestOverview(t *testing.T) {
	status, body := get(t, newTestApp(t, &stubFetcher{series: snapshot()}), "/report/overview")
	if status != 200 {
		t.Fatalf("got status %d", status)
	}
	if body["trips"].(float64) != 2 {
		t.Errorf("got %v trips", body["trips"])
	}
}

func TestMetrics(t *testing.T) {
	resp, err := NewApp(newTestApp(t, &stubFetcher{})).Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != 200 || !strings.Contains(string(body), "streport_") {
		t.Errorf("got %d without streport metrics", resp.StatusCode)
	}
}
