package redis_client

import (
	"context"
	"strconv"

	"github.com/adjust/rmq/v5"
	"github.com/fleetpulse/fleetpulse/pkg/util"
	"github.com/redis/go-redis/v9"
)

var Client *redis.Client
var QueueConnection rmq.Connection

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

func Connect() error {
	env := util.GetEnvironmentVariables()

	address := env.GetDefault("FLEETPULSE_REDIS_ADDRESS", defaultConnectionAddress)
	password := env.GetDefault("FLEETPULSE_REDIS_PASSWORD", defaultConnectionPassword)
	database := defaultDatabase

	if env["FLEETPULSE_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["FLEETPULSE_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return err
		}
	}

	Client = redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	statusCmd := Client.Ping(context.Background())
	err := statusCmd.Err()
	if err != nil {
		return err
	}

	QueueConnection, err = rmq.OpenConnectionWithRedisClient("fleetpulse", Client, nil)

	if err != nil {
		return err
	}

	return nil
}
