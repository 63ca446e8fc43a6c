package trips

import (
	"testing"
	"time"
)

func TestShiftStart(t *testing.T) {
	lima, err := time.LoadLocation("America/Lima")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"morning", time.Date(2025, 3, 10, 9, 15, 0, 0, lima), time.Date(2025, 3, 10, 8, 0, 0, 0, lima)},
		{"day shift start", time.Date(2025, 3, 10, 8, 0, 0, 0, lima), time.Date(2025, 3, 10, 8, 0, 0, 0, lima)},
		{"evening", time.Date(2025, 3, 10, 21, 0, 0, 0, lima), time.Date(2025, 3, 10, 20, 0, 0, 0, lima)},
		{"after midnight", time.Date(2025, 3, 11, 3, 0, 0, 0, lima), time.Date(2025, 3, 10, 20, 0, 0, 0, lima)},
		{"first of month", time.Date(2025, 4, 1, 7, 59, 0, 0, lima), time.Date(2025, 3, 31, 20, 0, 0, 0, lima)},
		{"utc reference", time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC), time.Date(2025, 3, 10, 8, 0, 0, 0, lima)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShiftStart(tt.now, lima)
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithinWindow(t *testing.T) {
	lima, _ := time.LoadLocation("America/Lima")
	reference := time.Date(2025, 3, 10, 10, 0, 0, 0, lima)

	row := func(exit time.Time) TripSummary {
		return TripSummary{TripID: 2000000001, ExitTime: exit}
	}

	tests := []struct {
		window string
		exit   time.Time
		want   bool
	}{
		{"current-shift", time.Date(2025, 3, 10, 8, 0, 0, 0, lima), true},
		{"current-shift", time.Date(2025, 3, 10, 7, 59, 0, 0, lima), false},
		{"current-shift", time.Date(2025, 3, 10, 19, 59, 0, 0, lima), true},
		{"current-shift", time.Date(2025, 3, 10, 20, 0, 0, 0, lima), false},
		{"previous-shift", time.Date(2025, 3, 9, 20, 0, 0, 0, lima), true},
		{"previous-shift", time.Date(2025, 3, 10, 7, 59, 0, 0, lima), true},
		{"previous-shift", time.Date(2025, 3, 10, 8, 0, 0, 0, lima), false},
		{"last-6h", time.Date(2025, 3, 10, 4, 0, 0, 0, lima), true},
		{"last-6h", time.Date(2025, 3, 10, 3, 59, 0, 0, lima), false},
		{"last-12h", time.Date(2025, 3, 9, 22, 30, 0, 0, lima), true},
		{"last-24h", time.Date(2025, 3, 9, 9, 0, 0, 0, lima), false},
		{"last-week", time.Date(2025, 3, 4, 10, 0, 0, 0, lima), true},
		{"last-month", time.Date(2025, 2, 8, 10, 0, 0, 0, lima), true},
		{"last-month", time.Date(2025, 2, 8, 9, 0, 0, 0, lima), false},
		{"PT1H", time.Date(2025, 3, 10, 9, 30, 0, 0, lima), true},
		{"all", time.Date(2001, 1, 1, 0, 0, 0, 0, lima), true},
		{"all", time.Time{}, true},
		{"last-week", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.window, func(t *testing.T) {
			window, err := ParseWindow(tt.window, lima)
			if err != nil {
				t.Fatalf("ParseWindow(%q): %v", tt.window, err)
			}

			if got := WithinWindow(row(tt.exit), window, reference); got != tt.want {
				t.Errorf("exit %v: got %v, want %v", tt.exit, got, tt.want)
			}
		})
	}
}

func TestParseWindowRejectsUnknown(t *testing.T) {
	if _, err := ParseWindow("yesterday", nil); err == nil {
		t.Error("expected an error for an unknown window")
	}
}

func TestFilterLeavesTableUntouched(t *testing.T) {
	reference := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	table := SummaryTable{
		Columns: []string{"Descarga"},
		Rows: []TripSummary{
			{TripID: 1, ExitTime: reference.Add(-time.Hour), Zones: map[string]float64{"Descarga": 10}, Attributes: Attributes{AttributeType: "Tolva"}},
			{TripID: 2, ExitTime: reference.Add(-48 * time.Hour), Zones: map[string]float64{"Descarga": 20}},
		},
	}

	window, _ := ParseWindow("last-24h", time.UTC)
	filtered := table.Filter(window, reference)

	if filtered.Len() != 1 || filtered.Rows[0].TripID != 1 {
		t.Fatalf("got %v, want only trip 1", filtered.Rows)
	}

	filtered.Rows[0].Zones["Descarga"] = 99
	filtered.Rows[0].Attributes[AttributeType] = "Plataforma"
	filtered.Columns[0] = "Otra"

	if table.Rows[0].Zones["Descarga"] != 10 || table.Rows[0].Attributes[AttributeType] != "Tolva" || table.Columns[0] != "Descarga" {
		t.Error("Filter result shares state with the original table")
	}
	if table.Len() != 2 {
		t.Error("Filter removed rows from the original table")
	}
}
