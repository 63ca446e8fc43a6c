package archiver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/jpuchoc/st-report/pkg/trips"
	"github.com/rs/zerolog/log"
)

const QueueName = "trip-summaries-archive"

// Publish queues every row of table for the archive worker and returns how
// many were queued.
func Publish(connection rmq.Connection, table trips.SummaryTable, now time.Time) (int, error) {
	documents, err := NewArchivedTripSummaries(table, now)
	if err != nil {
		return 0, err
	}
	if len(documents) == 0 {
		return 0, nil
	}

	payloads := make([][]byte, 0, len(documents))
	for _, document := range documents {
		payload, err := json.Marshal(document)
		if err != nil {
			return 0, fmt.Errorf("marshal trip %d: %w", document.TripID, err)
		}
		payloads = append(payloads, payload)
	}

	queue, err := connection.OpenQueue(QueueName)
	if err != nil {
		return 0, err
	}

	if err := queue.PublishBytes(payloads...); err != nil {
		return 0, err
	}

	return len(payloads), nil
}

// BatchConsumer stores queued trip summaries through an Archiver. A batch is
// acknowledged only once every decodable document in it has been stored.
type BatchConsumer struct {
	Archiver *Archiver
}

func (c *BatchConsumer) Consume(batch rmq.Deliveries) {
	var documents []*ArchivedTripSummary
	var accepted rmq.Deliveries

	for _, delivery := range batch {
		var document ArchivedTripSummary
		if err := json.Unmarshal([]byte(delivery.Payload()), &document); err != nil {
			log.Error().Err(err).Msg("Failed to decode archived trip summary")
			if err := delivery.Reject(); err != nil {
				log.Error().Err(err).Msg("Failed to reject delivery")
			}
			continue
		}

		documents = append(documents, &document)
		accepted = append(accepted, delivery)
	}

	if len(documents) == 0 {
		return
	}

	if err := c.Archiver.Store(context.Background(), documents, c.Archiver.now()); err != nil {
		log.Error().Err(err).Int("batch", len(documents)).Msg("Failed to archive trip summaries")
		if errs := accepted.Reject(); len(errs) > 0 {
			log.Error().Int("errors", len(errs)).Msg("Failed to reject deliveries")
		}
		return
	}

	if errs := accepted.Ack(); len(errs) > 0 {
		log.Error().Int("errors", len(errs)).Msg("Failed to ack deliveries")
	}

	log.Info().Int("batch", len(documents)).Msg("Archived queued trip summaries")
}

// Worker consumes QueueName until ctx is done.
type Worker struct {
	Connection rmq.Connection
	Archiver   *Archiver

	NumberConsumers int
	BatchSize       int
	Timeout         time.Duration
}

func (w *Worker) Run(ctx context.Context) error {
	log.Info().Str("queue", QueueName).Int("consumers", w.NumberConsumers).Msg("Starting consumers")

	queue, err := w.Connection.OpenQueue(QueueName)
	if err != nil {
		return err
	}
	if err := queue.StartConsuming(int64(w.NumberConsumers*w.BatchSize), time.Second); err != nil {
		return err
	}

	for i := 0; i < w.NumberConsumers; i++ {
		tag := fmt.Sprintf("archive-consumer-%d", i)
		if _, err := queue.AddBatchConsumer(tag, int64(w.BatchSize), w.Timeout, &BatchConsumer{Archiver: w.Archiver}); err != nil {
			return err
		}
	}

	<-ctx.Done()
	<-w.Connection.StopAllConsuming()

	log.Info().Str("queue", QueueName).Msg("Consumers stopped")

	return nil
}
