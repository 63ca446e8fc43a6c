package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jpuchoc/st-report/pkg/trips"
	"github.com/jpuchoc/st-report/pkg/util"
	"gopkg.in/yaml.v3"
)

type Telemetry struct {
	BaseURL  string `yaml:"base_url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	AssetID  string `yaml:"asset_id"`

	// File replaces the remote service with a JSON snapshot on disk.
	File string `yaml:"file"`

	WindowDays int           `yaml:"window_days"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries uint64        `yaml:"max_retries"`
	Limit      int           `yaml:"limit"`
}

type Config struct {
	FacilityTimezone string            `yaml:"facility_timezone"`
	TripIDValidRange trips.TripIDRange `yaml:"trip_id_valid_range"`

	Labels       trips.Labels      `yaml:"labels"`
	LabelAliases map[string]string `yaml:"label_aliases"`
	UnloadZones  []string          `yaml:"unload_zones"`
	Keys         trips.Keys        `yaml:"keys"`

	Display          trips.Display `yaml:"display"`
	HighlightedZones []string      `yaml:"highlighted_zones"`

	Telemetry Telemetry     `yaml:"telemetry"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

func Default() Config {
	options := trips.DefaultOptions()

	return Config{
		FacilityTimezone: "America/Lima",
		TripIDValidRange: options.TripIDRange,
		Labels:           options.Labels,
		LabelAliases:     options.Aliases,
		UnloadZones:      options.UnloadZones,
		Keys:             options.Keys,
		Display:          trips.DefaultDisplay(),
		HighlightedZones: []string{
			"Ruta hacia Calificación",
			"Calificación",
			"Ruta hacia Descarga",
			"Descarga",
		},
		Telemetry: Telemetry{
			WindowDays: 30,
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			Limit:      100000,
		},
		CacheTTL: 500 * time.Second,
	}
}

// Load reads the YAML file at path over the defaults and then applies
// STREPORT_* environment overrides. An empty path loads defaults only.
func Load(path string) (Config, error) {
	config := Default()

	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return config, err
		}

		if err := Decode(bytes.NewReader(file), &config); err != nil {
			return config, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := config.applyEnvironment(); err != nil {
		return config, err
	}

	return config, config.Validate()
}

func Decode(reader io.Reader, config *Config) error {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	err := decoder.Decode(config)
	if errors.Is(err, io.EOF) {
		return nil
	}

	return err
}

func (c *Config) applyEnvironment() error {
	c.FacilityTimezone = util.GetEnvironmentVariable("FACILITY_TIMEZONE", c.FacilityTimezone)

	c.Telemetry.BaseURL = util.GetEnvironmentVariable("BASE_URL", c.Telemetry.BaseURL)
	c.Telemetry.Username = util.GetEnvironmentVariable("USERNAME", c.Telemetry.Username)
	c.Telemetry.Password = util.GetEnvironmentVariable("PASSWORD", c.Telemetry.Password)
	c.Telemetry.AssetID = util.GetEnvironmentVariable("ASSET_ID", c.Telemetry.AssetID)
	c.Telemetry.File = util.GetEnvironmentVariable("TELEMETRY_FILE", c.Telemetry.File)

	if value := util.GetEnvironmentVariable("WINDOW_DAYS", ""); value != "" {
		days, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("STREPORT_WINDOW_DAYS: %w", err)
		}
		c.Telemetry.WindowDays = days
	}

	if value := util.GetEnvironmentVariable("CACHE_TTL", ""); value != "" {
		ttl, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("STREPORT_CACHE_TTL: %w", err)
		}
		c.CacheTTL = ttl
	}

	return nil
}

func (c Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("facility_timezone %q: %w", c.FacilityTimezone, err)
	}
	if c.Labels.Entry == "" || c.Labels.Exit == "" {
		return errors.New("labels.entry and labels.exit must be set")
	}
	if c.Labels.Entry == c.Labels.Exit {
		return errors.New("labels.entry and labels.exit must differ")
	}
	if c.TripIDValidRange.Min > c.TripIDValidRange.Max {
		return fmt.Errorf("trip_id_valid_range min %d is above max %d", c.TripIDValidRange.Min, c.TripIDValidRange.Max)
	}
	if c.Telemetry.WindowDays <= 0 {
		return fmt.Errorf("telemetry.window_days must be positive, got %d", c.Telemetry.WindowDays)
	}

	return nil
}

func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.FacilityTimezone)
}

// PipelineOptions converts the configuration into the options of a run.
func (c Config) PipelineOptions() (trips.Options, error) {
	loc, err := c.Location()
	if err != nil {
		return trips.Options{}, err
	}

	return trips.Options{
		Keys:        c.Keys,
		Labels:      c.Labels,
		Aliases:     c.LabelAliases,
		UnloadZones: c.UnloadZones,
		TripIDRange: c.TripIDValidRange,
		Location:    loc,
	}, nil
}
