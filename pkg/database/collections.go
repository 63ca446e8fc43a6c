package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const TripSummariesCollection = "trip_summaries"

func createIndexes() {
	createTripSummariesIndexes()
}

func createTripSummariesIndexes() {
	collection := GetCollection(TripSummariesCollection)
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tripid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "exittime", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "vehicletype", Value: 1}, {Key: "exittime", Value: -1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := collection.Indexes().CreateMany(context.Background(), indexes, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
