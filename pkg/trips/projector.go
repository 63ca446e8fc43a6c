package trips

import (
	"strconv"
	"strings"
	"time"
)

// Fixed, non zone columns of a summary row.
const (
	ColumnTripID          = "trip_id"
	ColumnEntryTime       = "entry_time"
	ColumnExitTime        = "exit_time"
	ColumnPermanenceHours = "permanence_hours"
	ColumnUnloadHours     = "unload_hours"
)

// Display controls how a summary table is presented: which columns are shown,
// under which header and in what order.
type Display struct {
	// Headers renames fixed columns and attributes. Zone columns not listed
	// here get TransitPrefix replaced by TransitHeaderPrefix.
	Headers map[string]string `yaml:"headers"`

	TransitPrefix       string `yaml:"transit_prefix"`
	TransitHeaderPrefix string `yaml:"transit_header_prefix"`

	// Order lists headers in output order. Headers whose column does not
	// exist in the table are skipped, and columns not listed are not shown.
	Order []string `yaml:"order"`

	TimeLayout string `yaml:"time_layout"`
}

func DefaultDisplay() Display {
	return Display{
		Headers: map[string]string{
			ColumnTripID:                   "NIA",
			string(AttributeType):          "Tipo",
			string(AttributeTractorPlate):  "Placa Tracto",
			string(AttributePlatformPlate): "Placa Plataforma",
			string(AttributeTracker):       "Tracker",
			string(AttributeDriver):        "Conductor",
			string(AttributeCompany):       "Empresa",
			ColumnEntryTime:                "Ingreso",
			ColumnExitTime:                 "Salida",
			ColumnPermanenceHours:          "T. Permanencia (h)",
			ColumnUnloadHours:              "T. Descarga (h)",
		},
		TransitPrefix:       "Ruta hacia ",
		TransitHeaderPrefix: "Ruta ",
		Order: []string{
			"NIA", "Tipo", "Empresa", "Ingreso", "Salida", "T. Permanencia (h)", "T. Descarga (h)",
			"Ruta Desmanteo", "Desmanteo",
			"Ruta Balanza inicial", "Balanza inicial",
			"Ruta Calificación", "Calificación",
			"Ruta Descarga", "Descarga",
			"Ruta Imán", "Imán",
			"Ruta Barrido", "Barrido",
			"Ruta Balanza final", "Balanza final",
			"Ruta Consumo", "Consumo",
			"Ruta Embutición", "Embutición",
			"Oxicorte", "Ruta Oxicorte",
			"Placa Tracto", "Placa Plataforma", "Tracker",
			"Conductor",
		},
		TimeLayout: "2006-01-02 15:04:05",
	}
}

// Header returns the display name of a column.
func (d Display) Header(column string) string {
	if header, exists := d.Headers[column]; exists {
		return header
	}
	if d.TransitPrefix != "" && strings.HasPrefix(column, d.TransitPrefix) {
		return d.TransitHeaderPrefix + strings.TrimPrefix(column, d.TransitPrefix)
	}

	return column
}

// ProjectedColumn pairs a source column with its header.
type ProjectedColumn struct {
	Source string
	Header string
	Zone   bool
}

// Columns resolves the display order against the columns present in table.
func (d Display) Columns(table SummaryTable) []ProjectedColumn {
	available := map[string]ProjectedColumn{}

	fixed := []string{ColumnTripID, ColumnEntryTime, ColumnExitTime, ColumnPermanenceHours, ColumnUnloadHours}
	for _, attribute := range AllAttributes {
		fixed = append(fixed, string(attribute))
	}
	for _, source := range fixed {
		available[d.Header(source)] = ProjectedColumn{Source: source, Header: d.Header(source)}
	}
	for _, zone := range table.Columns {
		header := d.Header(zone)
		if _, taken := available[header]; !taken {
			available[header] = ProjectedColumn{Source: zone, Header: header, Zone: true}
		}
	}

	var columns []ProjectedColumn
	for _, header := range d.Order {
		if column, exists := available[header]; exists {
			columns = append(columns, column)
		}
	}

	return columns
}

// ZoneColumns returns the zone labels that survive projection, in display
// order.
func (d Display) ZoneColumns(table SummaryTable) []string {
	var zones []string
	for _, column := range d.Columns(table) {
		if column.Zone {
			zones = append(zones, column.Source)
		}
	}

	return zones
}

// Projection is a presentation ready table of strings.
type Projection struct {
	Headers []string
	Rows    [][]string
}

// Project selects, renames and orders the columns of table. Numbers are
// printed with two decimals; callers pass a Rounded table.
func Project(table SummaryTable, display Display) Projection {
	columns := display.Columns(table)

	projection := Projection{
		Headers: make([]string, len(columns)),
		Rows:    make([][]string, 0, len(table.Rows)),
	}
	for i, column := range columns {
		projection.Headers[i] = column.Header
	}

	for _, row := range table.Rows {
		values := make([]string, len(columns))
		for i, column := range columns {
			values[i] = display.value(row, column)
		}
		projection.Rows = append(projection.Rows, values)
	}

	return projection
}

func (d Display) value(row TripSummary, column ProjectedColumn) string {
	if column.Zone {
		return formatNumber(row.Zones[column.Source])
	}

	switch column.Source {
	case ColumnTripID:
		return strconv.FormatInt(row.TripID, 10)
	case ColumnEntryTime:
		return d.formatTime(row.EntryTime)
	case ColumnExitTime:
		return d.formatTime(row.ExitTime)
	case ColumnPermanenceHours:
		return formatNumber(row.PermanenceHours)
	case ColumnUnloadHours:
		return formatNumber(row.UnloadHours)
	default:
		return row.Attributes.Get(Attribute(column.Source))
	}
}

func (d Display) formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	layout := d.TimeLayout
	if layout == "" {
		layout = "2006-01-02 15:04:05"
	}

	return t.Format(layout)
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}
