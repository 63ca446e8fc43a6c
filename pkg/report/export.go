package report

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/jpuchoc/st-report/pkg/trips"
)

// WriteWideCSV writes a projected table, one column per displayed header.
func WriteWideCSV(w io.Writer, projection trips.Projection) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(projection.Headers); err != nil {
		return err
	}
	if err := writer.WriteAll(projection.Rows); err != nil {
		return err
	}

	return writer.Error()
}

type ZoneMinutesRecord struct {
	TripID      int64   `csv:"trip_id"`
	VehicleType string  `csv:"vehicle_type"`
	Company     string  `csv:"company"`
	Zone        string  `csv:"zone"`
	Minutes     float64 `csv:"minutes"`
}

// LongRecords unpivots a summary table into one record per trip and zone
// column, in column order.
func LongRecords(table trips.SummaryTable) []*ZoneMinutesRecord {
	records := make([]*ZoneMinutesRecord, 0, len(table.Rows)*len(table.Columns))

	for _, row := range table.Rows {
		for _, zone := range table.Columns {
			records = append(records, &ZoneMinutesRecord{
				TripID:      row.TripID,
				VehicleType: row.VehicleType,
				Company:     row.Company,
				Zone:        zone,
				Minutes:     row.Zones[zone],
			})
		}
	}

	return records
}

func WriteLongCSV(w io.Writer, table trips.SummaryTable) error {
	records := LongRecords(table)

	return gocsv.Marshal(&records, w)
}

type jsonSummary struct {
	Status      string              `json:"status"`
	Error       string              `json:"error,omitempty"`
	Columns     []string            `json:"columns"`
	Rows        []trips.TripSummary `json:"rows"`
	Diagnostics trips.Diagnostics   `json:"diagnostics"`
}

func WriteJSON(w io.Writer, result trips.Result) error {
	summary := jsonSummary{
		Status:      result.Status.String(),
		Columns:     result.Table.Columns,
		Rows:        result.Table.Rows,
		Diagnostics: result.Diagnostics,
	}
	if result.Err != nil {
		summary.Error = result.Err.Error()
	}
	if summary.Columns == nil {
		summary.Columns = []string{}
	}
	if summary.Rows == nil {
		summary.Rows = []trips.TripSummary{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(summary)
}
