package telemetry

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/cenkalti/backoff/v4"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/fleetpulse/fleetpulse/pkg/database"
	"github.com/fleetpulse/fleetpulse/pkg/events"
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/fleetpulse/fleetpulse/pkg/redis_client"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const TelemetryQueueName = "telemetry-queue"

var lastSampleCache *cache.Cache[string]

func CreateLastSampleCache() {
	redisStore := redisstore.NewRedis(redis_client.Client, store.WithExpiration(90*time.Minute))

	lastSampleCache = cache.New[string](redisStore)
}

type BatchConsumer struct {
	detector *events.Detector
}

func NewBatchConsumer(detector *events.Detector) *BatchConsumer {
	return &BatchConsumer{detector: detector}
}

func (consumer *BatchConsumer) Consume(batch rmq.Deliveries) {
	payloads := batch.Payloads()

	samples, vehicleSamples := prepareBatch(payloads)

	if len(samples) > 0 {
		consumer.persistSamples(samples)
	}

	for vehicleRef, orderedSamples := range vehicleSamples {
		consumer.processVehicle(vehicleRef, orderedSamples)
	}

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Fatal().Err(err).Msg("Failed to consume telemetry batch")
		}
	}
}

// prepareBatch decodes and validates the raw payloads, then groups them per
// vehicle ordered by RecordedAt. A bad payload drops on its own, never the
// batch.
func prepareBatch(payloads []string) ([]*fvdf.PositionSample, map[string][]*fvdf.PositionSample) {
	var samples []*fvdf.PositionSample

	for _, payload := range payloads {
		var sample *fvdf.PositionSample
		if err := json.Unmarshal([]byte(payload), &sample); err != nil {
			log.Error().Err(err).Msg("Failed to decode position sample")
			continue
		}

		if err := sample.Validate(); err != nil {
			log.Error().Err(err).Str("vehicle", sample.VehicleRef).Msg("Rejecting invalid position sample")
			continue
		}

		sample.PrimaryIdentifier = sample.GenerateIdentifier()
		if sample.CreationDateTime.IsZero() {
			sample.CreationDateTime = time.Now()
		}

		samples = append(samples, sample)
	}

	vehicleSamples := map[string][]*fvdf.PositionSample{}
	for _, sample := range samples {
		vehicleSamples[sample.VehicleRef] = append(vehicleSamples[sample.VehicleRef], sample)
	}

	for _, orderedSamples := range vehicleSamples {
		sort.Slice(orderedSamples, func(i, j int) bool {
			return orderedSamples[i].RecordedAt.Before(orderedSamples[j].RecordedAt)
		})
	}

	return samples, vehicleSamples
}

// detectionWindow trims samples that are not newer than the stored last
// state. Stale samples stay persisted for segmentation but are never
// detected on.
func detectionWindow(previous *fvdf.PositionSample, samples []*fvdf.PositionSample) []*fvdf.PositionSample {
	if previous == nil {
		return samples
	}

	i := 0
	for i < len(samples) && !samples[i].RecordedAt.After(previous.RecordedAt) {
		i++
	}

	return samples[i:]
}

func (consumer *BatchConsumer) persistSamples(samples []*fvdf.PositionSample) {
	var sampleOperations []mongo.WriteModel

	for _, sample := range samples {
		bsonRep, _ := bson.Marshal(bson.M{"$setOnInsert": sample})

		updateModel := mongo.NewUpdateOneModel()
		updateModel.SetFilter(bson.M{"vehicleref": sample.VehicleRef, "recordedat": sample.RecordedAt})
		updateModel.SetUpdate(bsonRep)
		updateModel.SetUpsert(true)

		sampleOperations = append(sampleOperations, updateModel)
	}

	samplesCollection := database.GetCollection("position_samples")

	startTime := time.Now()
	err := backoff.Retry(func() error {
		_, err := samplesCollection.BulkWrite(context.Background(), sampleOperations, options.BulkWrite().SetOrdered(false))
		return err
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4))

	log.Info().Int("Length", len(sampleOperations)).Str("Time", time.Since(startTime).String()).Msg("Bulk write position samples")

	if err != nil {
		// Crash without acking - the cleaner returns the batch and the
		// unique sample index makes the redelivery a no-op
		log.Fatal().Err(err).Msg("Failed to bulk write position samples")
	}
}

func (consumer *BatchConsumer) processVehicle(vehicleRef string, samples []*fvdf.PositionSample) {
	lastState := getLastState(vehicleRef)

	var previous *fvdf.PositionSample
	if lastState != nil {
		previous = &lastState.LastSample
	}

	fresh := detectionWindow(previous, samples)

	for _, sample := range fresh {
		consumer.detector.ProcessSample(previous, sample)
		previous = sample
	}

	if len(fresh) > 0 {
		updateLastState(vehicleRef, fresh[len(fresh)-1])
	}
}
