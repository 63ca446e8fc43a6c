package archiver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"github.com/jpuchoc/st-report/pkg/database"
	"github.com/jpuchoc/st-report/pkg/elastic_client"
	"github.com/jpuchoc/st-report/pkg/trips"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Archiver persists a summary table outside the process: upserted into the
// trip_summaries collection, indexed into monthly Elasticsearch indexes and
// optionally bundled to disk and object storage.
type Archiver struct {
	WriteDatabase bool
	IndexPrefix   string

	OutputDirectory string
	WriteBundle     bool
	CloudUpload     bool
	CloudBucketName string

	Now func() time.Time
}

func (a *Archiver) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}

	return a.Now()
}

func (a *Archiver) Perform(ctx context.Context, table trips.SummaryTable) error {
	now := a.now()

	log.Info().
		Int("rows", table.Len()).
		Bool("database", a.WriteDatabase).
		Str("index", a.IndexPrefix).
		Bool("bundle", a.WriteBundle).
		Msg("Running archive process")

	documents, err := NewArchivedTripSummaries(table, now)
	if err != nil {
		return err
	}

	return a.Store(ctx, documents, now)
}

// Store writes already built documents to every enabled destination.
func (a *Archiver) Store(ctx context.Context, documents []*ArchivedTripSummary, now time.Time) error {
	if len(documents) == 0 {
		log.Info().Msg("No trip summaries to archive")
		return nil
	}

	if a.WriteDatabase {
		if err := a.writeDatabase(ctx, documents); err != nil {
			return err
		}
	}

	if a.IndexPrefix != "" {
		a.index(documents)
	}

	if a.WriteBundle {
		bundleFilename := BundleFilename(now)
		bundlePath := path.Join(a.OutputDirectory, bundleFilename)

		bundleFile, err := os.Create(bundlePath)
		if err != nil {
			return fmt.Errorf("create bundle: %w", err)
		}

		err = WriteBundle(bundleFile, documents, now)
		closeErr := bundleFile.Close()
		if err != nil {
			return err
		}
		if closeErr != nil {
			return closeErr
		}

		log.Info().Str("file", bundlePath).Int("recordCount", len(documents)).Msg("Archive bundle written")

		if a.CloudUpload {
			if err := a.uploadToStorage(ctx, bundlePath, bundleFilename); err != nil {
				return err
			}
		}
	}

	return nil
}

func (a *Archiver) writeDatabase(ctx context.Context, documents []*ArchivedTripSummary) error {
	startTime := time.Now()

	operations := WriteModels(documents)

	collection := database.GetCollection(database.TripSummariesCollection)
	result, err := collection.BulkWrite(ctx, operations, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("bulk write trip summaries: %w", err)
	}

	log.Info().
		Int64("upserted", result.UpsertedCount).
		Int64("modified", result.ModifiedCount).
		Str("bulkwrite", time.Since(startTime).String()).
		Msg("Trip summaries written")

	return nil
}

func (a *Archiver) index(documents []*ArchivedTripSummary) {
	requests, err := IndexRequests(a.IndexPrefix, documents)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal trip summaries")
	}

	for _, request := range requests {
		elastic_client.IndexRequest(request.Index, request.ID, bytes.NewReader(request.Body))
	}

	elastic_client.WaitUntilQueueEmpty()
}

type IndexRequest struct {
	Index string
	ID    string
	Body  []byte
}

// IndexRequests marshals the documents concurrently. Documents that fail to
// marshal are left out and reported in the joined error. The returned
// requests are in no particular order.
func IndexRequests(prefix string, documents []*ArchivedTripSummary) ([]IndexRequest, error) {
	p := pool.NewWithResults[IndexRequest]().WithErrors()
	p.WithMaxGoroutines(50)

	for _, document := range documents {
		document := document

		p.Go(func() (IndexRequest, error) {
			body, err := json.Marshal(document)
			if err != nil {
				return IndexRequest{}, fmt.Errorf("marshal %s: %w", document.PrimaryIdentifier, err)
			}

			return IndexRequest{
				Index: IndexName(prefix, document.ExitTime),
				ID:    document.PrimaryIdentifier,
				Body:  body,
			}, nil
		})
	}

	return p.Wait()
}

// IndexName returns the monthly index of a trip, keyed on its exit time.
func IndexName(prefix string, exitTime time.Time) string {
	return fmt.Sprintf("%s-%d-%02d", prefix, exitTime.Year(), exitTime.Month())
}

func (a *Archiver) uploadToStorage(ctx context.Context, fullBundlePath string, filename string) error {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	reader, err := os.Open(fullBundlePath)
	if err != nil {
		return err
	}
	defer reader.Close()

	object := client.Bucket(a.CloudBucketName).Object(filename)
	writer := object.NewWriter(ctx)

	if _, err := io.Copy(writer, reader); err != nil {
		writer.Close()
		return err
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("write %s to bucket %s: %w", filename, a.CloudBucketName, err)
	}

	log.Info().Msgf("Written file %s to bucket %s", object.ObjectName(), object.BucketName())

	return nil
}
