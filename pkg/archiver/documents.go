package archiver

import (
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/jpuchoc/st-report/pkg/trips"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type ArchivedTripSummary struct {
	PrimaryIdentifier string `json:"primaryidentifier" bson:"primaryidentifier"`

	TripID      int64            `json:"tripid" bson:"tripid"`
	VehicleType string           `json:"vehicletype" bson:"vehicletype"`
	Company     string           `json:"company" bson:"company"`
	Attributes  trips.Attributes `json:"attributes" bson:"attributes"`

	EntryTime time.Time `json:"entrytime" bson:"entrytime"`
	ExitTime  time.Time `json:"exittime" bson:"exittime"`

	PermanenceHours float64 `json:"permanencehours" bson:"permanencehours"`
	UnloadHours     float64 `json:"unloadhours" bson:"unloadhours"`

	Zones map[string]float64 `json:"zones" bson:"zones"`

	ModificationDateTime time.Time `json:"modificationdatetime" bson:"modificationdatetime"`
}

func NewArchivedTripSummaries(table trips.SummaryTable, now time.Time) ([]*ArchivedTripSummary, error) {
	documents := make([]*ArchivedTripSummary, 0, table.Len())

	for _, row := range table.Rows {
		document := &ArchivedTripSummary{}
		if err := copier.Copy(document, &row); err != nil {
			return nil, fmt.Errorf("copy trip %d: %w", row.TripID, err)
		}

		// Rows of the same table share nothing with the archived copy.
		document.Attributes = row.Attributes.Clone()
		document.Zones = make(map[string]float64, len(row.Zones))
		for label, minutes := range row.Zones {
			document.Zones[label] = minutes
		}

		document.PrimaryIdentifier = fmt.Sprintf("STREPORT:TRIP:%d", row.TripID)
		document.ModificationDateTime = now

		documents = append(documents, document)
	}

	return documents, nil
}

// WriteModels builds one upsert per trip so reruns over overlapping windows
// replace earlier summaries instead of duplicating them.
func WriteModels(documents []*ArchivedTripSummary) []mongo.WriteModel {
	operations := make([]mongo.WriteModel, 0, len(documents))

	for _, document := range documents {
		operations = append(operations, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"tripid": document.TripID}).
			SetReplacement(document).
			SetUpsert(true))
	}

	return operations
}
