package archiver

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/jpuchoc/st-report/pkg/trips"
)

func TestPublish(t *testing.T) {
	connection := rmq.NewTestConnection()

	queued, err := Publish(connection, testTable(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if queued != 2 {
		t.Errorf("got %d queued, want 2", queued)
	}

	deliveries := connection.GetDeliveries(QueueName)
	if len(deliveries) != 2 {
		t.Fatalf("got %d deliveries, want 2", len(deliveries))
	}

	var document ArchivedTripSummary
	if err := json.Unmarshal([]byte(deliveries[0]), &document); err != nil {
		t.Fatalf("decode delivery: %v", err)
	}
	if document.TripID != 2000000001 || document.Zones["Descarga"] != 20 {
		t.Errorf("got %+v", document)
	}
}

func TestPublishEmptyTable(t *testing.T) {
	connection := rmq.NewTestConnection()

	queued, err := Publish(connection, trips.SummaryTable{}, time.Now())
	if err != nil || queued != 0 {
		t.Errorf("got %d queued and %v", queued, err)
	}
}

func testDeliveries(t *testing.T, payloads ...string) (rmq.Deliveries, []*rmq.TestDelivery) {
	t.Helper()

	var batch rmq.Deliveries
	var deliveries []*rmq.TestDelivery
	for _, payload := range payloads {
		delivery := rmq.NewTestDeliveryString(payload)
		batch = append(batch, delivery)
		deliveries = append(deliveries, delivery)
	}

	return batch, deliveries
}

func documentPayloads(t *testing.T) []string {
	t.Helper()

	documents, err := NewArchivedTripSummaries(testTable(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payloads []string
	for _, document := range documents {
		payload, _ := json.Marshal(document)
		payloads = append(payloads, string(payload))
	}

	return payloads
}

func TestBatchConsumer(t *testing.T) {
	now := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	dir := t.TempDir()

	consumer := &BatchConsumer{Archiver: &Archiver{
		OutputDirectory: dir,
		WriteBundle:     true,
		Now:             func() time.Time { return now },
	}}

	payloads := append(documentPayloads(t), "{not json")
	batch, deliveries := testDeliveries(t, payloads...)

	consumer.Consume(batch)

	want := []rmq.State{rmq.Acked, rmq.Acked, rmq.Rejected}
	for i, delivery := range deliveries {
		if delivery.State != want[i] {
			t.Errorf("delivery %d: got state %v, want %v", i, delivery.State, want[i])
		}
	}

	if _, err := os.Stat(filepath.Join(dir, BundleFilename(now))); err != nil {
		t.Errorf("bundle not written: %v", err)
	}
}

func TestBatchConsumerStoreFailure(t *testing.T) {
	consumer := &BatchConsumer{Archiver: &Archiver{
		OutputDirectory: filepath.Join(t.TempDir(), "missing"),
		WriteBundle:     true,
	}}

	batch, deliveries := testDeliveries(t, documentPayloads(t)...)

	consumer.Consume(batch)

	for i, delivery := range deliveries {
		if delivery.State != rmq.Rejected {
			t.Errorf("delivery %d: got state %v, want rejected", i, delivery.State)
		}
	}
}
