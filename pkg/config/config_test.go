package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/jpuchoc/st-report/pkg/trips"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "st-report.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return path
}

func TestLoadDefaults(t *testing.T) {
	config, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.FacilityTimezone != "America/Lima" {
		t.Errorf("got timezone %q, want America/Lima", config.FacilityTimezone)
	}
	if config.TripIDValidRange != (trips.TripIDRange{Min: 2000000000, Max: 2999999999}) {
		t.Errorf("got range %+v", config.TripIDValidRange)
	}
	if config.Labels.Weighing != "Balanza" || config.Labels.TransitToWeighing != "Ruta hacia Balanza" {
		t.Errorf("got labels %+v", config.Labels)
	}
	if config.CacheTTL != 500*time.Second || config.Telemetry.WindowDays != 30 {
		t.Errorf("got ttl %v and window %d days", config.CacheTTL, config.Telemetry.WindowDays)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
facility_timezone: America/Bogota
trip_id_valid_range:
  min: 100
  max: 200
labels:
  weighing: Bascula
label_aliases:
  Descarga 2: Descarga
unload_zones: [Descarga]
cache_ttl: 2m
telemetry:
  base_url: https://telemetry.example.com
  window_days: 7
`)

	config, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.FacilityTimezone != "America/Bogota" {
		t.Errorf("got timezone %q", config.FacilityTimezone)
	}
	if config.TripIDValidRange.Min != 100 || config.TripIDValidRange.Max != 200 {
		t.Errorf("got range %+v", config.TripIDValidRange)
	}
	if config.Labels.Weighing != "Bascula" || config.Labels.Entry != "En Asignación" {
		t.Errorf("unset labels should keep their defaults, got %+v", config.Labels)
	}
	if config.LabelAliases["Descarga 2"] != "Descarga" || config.LabelAliases["Iman Core"] != "Imán" {
		t.Errorf("got aliases %v", config.LabelAliases)
	}
	if len(config.UnloadZones) != 1 || config.UnloadZones[0] != "Descarga" {
		t.Errorf("got unload zones %v", config.UnloadZones)
	}
	if config.CacheTTL != 2*time.Minute {
		t.Errorf("got ttl %v", config.CacheTTL)
	}
	if config.Telemetry.BaseURL != "https://telemetry.example.com" || config.Telemetry.WindowDays != 7 {
		t.Errorf("got telemetry %+v", config.Telemetry)
	}
	if config.Telemetry.MaxRetries != 3 {
		t.Errorf("got max retries %d, want default 3", config.Telemetry.MaxRetries)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("STREPORT_BASE_URL", "https://env.example.com")
	t.Setenv("STREPORT_USERNAME", "reporter")
	t.Setenv("STREPORT_PASSWORD", "secret")
	t.Setenv("STREPORT_ASSET_ID", "asset-42")
	t.Setenv("STREPORT_FACILITY_TIMEZONE", "UTC")
	t.Setenv("STREPORT_WINDOW_DAYS", "3")

	path := writeConfig(t, "telemetry:\n  base_url: https://file.example.com\n")

	config, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.Telemetry.BaseURL != "https://env.example.com" {
		t.Errorf("environment should win over file, got %q", config.Telemetry.BaseURL)
	}
	if config.Telemetry.Username != "reporter" || config.Telemetry.Password != "secret" || config.Telemetry.AssetID != "asset-42" {
		t.Errorf("got telemetry %+v", config.Telemetry)
	}
	if config.FacilityTimezone != "UTC" || config.Telemetry.WindowDays != 3 {
		t.Errorf("got timezone %q and window %d", config.FacilityTimezone, config.Telemetry.WindowDays)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown timezone", "facility_timezone: Mars/Olympus\n"},
		{"inverted range", "trip_id_valid_range:\n  min: 10\n  max: 1\n"},
		{"same entry and exit", "labels:\n  entry: Puerta\n  exit: Puerta\n"},
		{"unknown field", "facility_timezon: UTC\n"},
		{"bad window", "telemetry:\n  window_days: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestPipelineOptions(t *testing.T) {
	config := Default()
	config.FacilityTimezone = "UTC"

	options, err := config.PipelineOptions()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if options.Location != time.UTC {
		t.Errorf("got location %v", options.Location)
	}
	if options.Labels != config.Labels || options.TripIDRange != config.TripIDValidRange {
		t.Errorf("got options %+v", options)
	}
}
