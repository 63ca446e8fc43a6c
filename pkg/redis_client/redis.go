package redis_client

import (
	"context"
	"strconv"

	"github.com/adjust/rmq/v5"
	"github.com/jpuchoc/st-report/pkg/util"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var Client *redis.Client
var QueueConnection rmq.Connection

const defaultConnectionPassword = ""
const defaultDatabase = 0

// Connect sets up the global client and queue connection from
// STREPORT_REDIS_*. Redis backs the fetch cache and the archive queue, so
// without an address it is skipped unless required.
func Connect(required bool) error {
	env := util.GetEnvironmentVariables()

	address := env["STREPORT_REDIS_ADDRESS"]
	password := defaultConnectionPassword
	database := defaultDatabase

	if address == "" && !required {
		log.Info().Msg("Skipping Redis setup")
		return nil
	} else if address == "" {
		address = "localhost:6379"
	}

	if env["STREPORT_REDIS_PASSWORD"] != "" {
		password = env["STREPORT_REDIS_PASSWORD"]
	}

	if env["STREPORT_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["STREPORT_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return err
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return err
	}

	queueConnection, err := rmq.OpenConnectionWithRedisClient("streport", client, nil)
	if err != nil {
		return err
	}

	Client = client
	QueueConnection = queueConnection
	log.Info().Str("address", address).Msg("Redis client setup")

	return nil
}
