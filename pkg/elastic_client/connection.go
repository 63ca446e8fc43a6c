package elastic_client

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/jpuchoc/st-report/pkg/util"
	"github.com/rs/zerolog/log"
)

var Client *elasticsearch.Client
var bulkIndexer esutil.BulkIndexer

func Connect(required bool) error {
	env := util.GetEnvironmentVariables()

	if env["STREPORT_ELASTICSEARCH_ADDRESS"] == "" && !required {
		log.Info().Msg("Skipping Elasticsearch setup")
		return nil
	} else if env["STREPORT_ELASTICSEARCH_ADDRESS"] == "" && required {
		log.Fatal().Msg("Elasticsearch configuration not set")
	}

	tp := http.DefaultTransport.(*http.Transport).Clone()
	tp.TLSClientConfig = &tls.Config{InsecureSkipVerify: env["STREPORT_ELASTICSEARCH_INSECURE"] == "YES"}

	retryBackoff := backoff.NewExponentialBackOff()

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{env["STREPORT_ELASTICSEARCH_ADDRESS"]},
		Username:  env["STREPORT_ELASTICSEARCH_USERNAME"],
		Password:  env["STREPORT_ELASTICSEARCH_PASSWORD"],
		Transport: tp,

		RetryOnStatus: []int{502, 503, 504, 429},

		RetryBackoff: func(i int) time.Duration {
			if i == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},
		MaxRetries: 5,
	})
	if err != nil {
		return err
	}

	_, err = es.Info()
	if err != nil {
		return err
	}

	Client = es

	bulkIndexer, err = newBulkIndexer()
	if err != nil {
		return err
	}

	log.Info().Msgf("Elasticsearch client setup for %s", env["STREPORT_ELASTICSEARCH_ADDRESS"])

	return nil
}

// IndexRequest queues a document on the bulk indexer. It is a no-op when
// Elasticsearch is not configured.
func IndexRequest(indexName string, documentID string, document io.ReadSeeker) {
	if Client == nil || bulkIndexer == nil {
		return
	}

	bulkIndexer.Add(
		context.Background(),
		esutil.BulkIndexerItem{
			Index:      indexName,
			Action:     "index",
			DocumentID: documentID,
			Body:       document,
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					log.Error().Err(err).Str("indexName", indexName).Msg("Failed to index document")
				} else {
					log.Error().Str("type", res.Error.Type).Str("reason", res.Error.Reason).Msg("Failed to index document")
				}
			},
		},
	)
}

func newBulkIndexer() (esutil.BulkIndexer, error) {
	return esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:        Client,
		FlushInterval: 15 * time.Second,
	})
}

// WaitUntilQueueEmpty flushes the queued documents and opens a fresh indexer
// for later requests.
func WaitUntilQueueEmpty() {
	if bulkIndexer == nil {
		return
	}

	if err := bulkIndexer.Close(context.Background()); err != nil {
		log.Error().Err(err).Msg("Failed to flush Elasticsearch bulk indexer")
	}

	stats := bulkIndexer.Stats()
	log.Info().
		Uint64("indexed", stats.NumIndexed).
		Uint64("failed", stats.NumFailed).
		Msg("Elasticsearch bulk indexer flushed")

	indexer, err := newBulkIndexer()
	if err != nil {
		log.Error().Err(err).Msg("Failed to reopen Elasticsearch bulk indexer")
		bulkIndexer = nil
		return
	}
	bulkIndexer = indexer
}
