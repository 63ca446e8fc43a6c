package trips

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sample is a single telemetry point as returned by the timeseries API.
// Both fields may arrive as JSON numbers or strings.
type Sample struct {
	TS    string `json:"ts"`
	Value string `json:"value"`
}

func (s *Sample) UnmarshalJSON(data []byte) error {
	var raw struct {
		TS    json.RawMessage `json:"ts"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.TS = rawToString(raw.TS)
	s.Value = rawToString(raw.Value)

	return nil
}

func (s Sample) MarshalJSON() ([]byte, error) {
	if ts, err := strconv.ParseInt(s.TS, 10, 64); err == nil {
		return json.Marshal(struct {
			TS    int64  `json:"ts"`
			Value string `json:"value"`
		}{ts, s.Value})
	}

	return json.Marshal(struct {
		TS    string `json:"ts"`
		Value string `json:"value"`
	}{s.TS, s.Value})
}

func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}

	return strings.TrimSpace(string(raw))
}

// Series maps a telemetry key name to its samples.
type Series map[string][]Sample

type Attribute string

const (
	AttributeType          Attribute = "type"
	AttributeTractorPlate  Attribute = "tractor_plate"
	AttributePlatformPlate Attribute = "platform_plate"
	AttributeTracker       Attribute = "tracker"
	AttributeDriver        Attribute = "driver"
	AttributeCompany       Attribute = "company"
)

// AllAttributes is the fixed set of trip level attributes, in display order.
var AllAttributes = []Attribute{
	AttributeType,
	AttributeTractorPlate,
	AttributePlatformPlate,
	AttributeTracker,
	AttributeDriver,
	AttributeCompany,
}

// Attributes holds the trip level values carried by an event. A missing key
// means the value was never reported for that row.
type Attributes map[Attribute]string

func (a Attributes) Get(attribute Attribute) string {
	return a[attribute]
}

func (a Attributes) Clone() Attributes {
	clone := make(Attributes, len(a))
	for k, v := range a {
		clone[k] = v
	}

	return clone
}

// Keys names the telemetry series feeding each event column.
type Keys struct {
	TripID     string               `yaml:"trip_id"`
	Location   string               `yaml:"location"`
	Attributes map[Attribute]string `yaml:"attributes"`
}

func DefaultKeys() Keys {
	return Keys{
		TripID:   "logs_nia",
		Location: "logs_ubicacion",
		Attributes: map[Attribute]string{
			AttributeType:          "shared_tipo",
			AttributeTractorPlate:  "shared_placaTracto",
			AttributePlatformPlate: "shared_placaPlataforma",
			AttributeTracker:       "shared_tracker",
			AttributeDriver:        "shared_conductor",
			AttributeCompany:       "shared_empresa",
		},
	}
}

// Names returns every key to request from the telemetry service.
func (k Keys) Names() []string {
	names := []string{k.TripID, k.Location}
	for _, attribute := range AllAttributes {
		if name := k.Attributes[attribute]; name != "" {
			names = append(names, name)
		}
	}

	return names
}

// Event is one normalized row: a trip passing a zone at a point in time.
type Event struct {
	TripID    int64
	Timestamp int64
	LocalTime time.Time

	// Zone is the zone label of record. VisitLabel starts equal to Zone and is
	// the only field rewritten by disambiguation.
	Zone       string
	VisitLabel string

	Attributes Attributes
}

func (e Event) String() string {
	return fmt.Sprintf("%d@%d[%s]", e.TripID, e.Timestamp, e.VisitLabel)
}

// Table is a full batch of events. Every pipeline stage takes and returns one.
type Table []Event

// Clone returns a copy that shares no attribute maps with the original.
func (t Table) Clone() Table {
	clone := make(Table, len(t))
	for i, event := range t {
		event.Attributes = event.Attributes.Clone()
		clone[i] = event
	}

	return clone
}

// GroupByTrip returns row indexes per trip, in table order, plus the trip ids
// in first-seen order.
func (t Table) GroupByTrip() (map[int64][]int, []int64) {
	groups := map[int64][]int{}
	var order []int64

	for i, event := range t {
		if _, exists := groups[event.TripID]; !exists {
			order = append(order, event.TripID)
		}
		groups[event.TripID] = append(groups[event.TripID], i)
	}

	return groups, order
}
