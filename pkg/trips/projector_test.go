package trips

import (
	"reflect"
	"testing"
	"time"
)

func sampleSummary() SummaryTable {
	entry := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)

	return SummaryTable{
		Columns: []string{"Balanza", "Balanza inicial", "Descarga", "En Asignación", "Ruta hacia Descarga", "Zona libre"},
		Rows: []TripSummary{
			{
				TripID:      2000000001,
				VehicleType: "Tolva",
				Company:     "ACME",
				Attributes: Attributes{
					AttributeType:         "Tolva",
					AttributeCompany:      "ACME",
					AttributeTractorPlate: "ABC-123",
				},
				EntryTime:       entry,
				ExitTime:        entry.Add(90 * time.Minute),
				PermanenceHours: 1.5,
				UnloadHours:     0.75,
				Zones: map[string]float64{
					"Balanza": 1, "Balanza inicial": 5, "Descarga": 30,
					"En Asignación": 2, "Ruta hacia Descarga": 10, "Zona libre": 4,
				},
			},
		},
	}
}

func TestDisplayHeader(t *testing.T) {
	display := DefaultDisplay()

	tests := map[string]string{
		ColumnTripID:                  "NIA",
		string(AttributeCompany):      "Empresa",
		"Ruta hacia Descarga":         "Ruta Descarga",
		"Ruta hacia Balanza final":    "Ruta Balanza final",
		"Descarga":                    "Descarga",
		ColumnUnloadHours:             "T. Descarga (h)",
		string(AttributeTractorPlate): "Placa Tracto",
	}

	for column, want := range tests {
		if got := display.Header(column); got != want {
			t.Errorf("Header(%q) got %q, want %q", column, got, want)
		}
	}
}

func TestProject(t *testing.T) {
	projection := Project(sampleSummary(), DefaultDisplay())

	wantHeaders := []string{
		"NIA", "Tipo", "Empresa", "Ingreso", "Salida", "T. Permanencia (h)", "T. Descarga (h)",
		"Balanza inicial", "Ruta Descarga", "Descarga",
		"Placa Tracto", "Placa Plataforma", "Tracker", "Conductor",
	}
	if !reflect.DeepEqual(projection.Headers, wantHeaders) {
		t.Errorf("got headers %v, want %v", projection.Headers, wantHeaders)
	}

	wantRow := []string{
		"2000000001", "Tolva", "ACME", "2025-03-10 08:30:00", "2025-03-10 10:00:00", "1.50", "0.75",
		"5.00", "10.00", "30.00",
		"ABC-123", "", "", "",
	}
	if len(projection.Rows) != 1 || !reflect.DeepEqual(projection.Rows[0], wantRow) {
		t.Errorf("got rows %v, want %v", projection.Rows, wantRow)
	}
}

func TestZoneColumns(t *testing.T) {
	got := DefaultDisplay().ZoneColumns(sampleSummary())
	want := []string{"Balanza inicial", "Ruta hacia Descarga", "Descarga"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
