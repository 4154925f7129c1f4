package consumer

import (
	"fmt"
	"net/http"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/fleetpulse/fleetpulse/pkg/redis_client"
	"github.com/rs/zerolog/log"
)

const (
	defaultNumberConsumers = 2
	defaultBatchSize       = 200
	defaultBatchTimeout    = 2 * time.Second

	defaultStatsListen = ":3333"
)

type RedisConsumer struct {
	QueueName string

	NumberConsumers int
	BatchSize       int

	Timeout time.Duration

	// StatsListen serves the queue stats page and a health probe. Left
	// empty it binds the default port
	StatsListen string

	Consumer rmq.BatchConsumer
}

func (c *RedisConsumer) Setup() {
	if c.NumberConsumers == 0 {
		c.NumberConsumers = defaultNumberConsumers
	}
	if c.BatchSize == 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.Timeout == 0 {
		c.Timeout = defaultBatchTimeout
	}
	if c.StatsListen == "" {
		c.StatsListen = defaultStatsListen
	}

	c.startConsumers()
	go c.startStatsServer()
}

func (c *RedisConsumer) startConsumers() {
	log.Info().
		Str("queue", c.QueueName).
		Int("consumers", c.NumberConsumers).
		Int("batchsize", c.BatchSize).
		Msg("Starting consumers")

	queue, err := redis_client.QueueConnection.OpenQueue(c.QueueName)
	if err != nil {
		panic(err)
	}

	// Prefetch enough to keep every batch consumer full
	if err := queue.StartConsuming(int64(c.NumberConsumers*c.BatchSize), 1*time.Second); err != nil {
		panic(err)
	}

	for i := 0; i < c.NumberConsumers; i++ {
		go c.startQueueConsumer(queue, i)
	}
}

func (c *RedisConsumer) startQueueConsumer(queue rmq.Queue, id int) {
	log.Info().Msgf("Starting %s consumer %d", c.QueueName, id)

	if _, err := queue.AddBatchConsumer(fmt.Sprintf("%s-%d", c.QueueName, id), int64(c.BatchSize), c.Timeout, c.Consumer); err != nil {
		panic(err)
	}
}

func (c *RedisConsumer) startStatsServer() {
	endpoint := fmt.Sprintf("/%s/stats", c.QueueName)
	http.Handle(endpoint, NewStatsHandler(redis_client.QueueConnection))
	http.Handle("/health", NewHealthHandler())

	log.Info().Msgf("Stats server listening on http://localhost%s%s", c.StatsListen, endpoint)
	if err := http.ListenAndServe(c.StatsListen, nil); err != nil {
		panic(err)
	}
}
