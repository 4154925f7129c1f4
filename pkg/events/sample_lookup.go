package events

import (
	"context"
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/database"
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SampleLookup answers the bounded backwards searches some rules need.
// A failed search returns the zero answer and the rule skips itself.
type SampleLookup interface {
	IgnitionOnRunStart(vehicleRef string, before time.Time, lookback time.Duration) *fvdf.PositionSample
	IdleRunStart(vehicleRef string, before time.Time, lookback time.Duration, speedThreshold float64) (time.Time, bool)
}

type DatabaseSampleLookup struct {
}

// IgnitionOnRunStart walks backwards through stored samples to find the first
// sample of the ignition-on run that is ending at the given moment
func (l DatabaseSampleLookup) IgnitionOnRunStart(vehicleRef string, before time.Time, lookback time.Duration) *fvdf.PositionSample {
	samplesCollection := database.GetCollection("position_samples")

	cursor, err := samplesCollection.Find(context.Background(), bson.M{
		"vehicleref": vehicleRef,
		"recordedat": bson.M{
			"$lt":  before,
			"$gte": before.Add(-lookback),
		},
	}, options.Find().SetSort(bson.M{"recordedat": -1}))
	if err != nil {
		log.Error().Err(err).Msg("Failed to search position samples")
		return nil
	}

	var runStart *fvdf.PositionSample

	for cursor.Next(context.TODO()) {
		var sample fvdf.PositionSample
		if err := cursor.Decode(&sample); err != nil {
			log.Error().Err(err).Msg("Failed to decode PositionSample")
			continue
		}

		if !sample.IgnitionOn {
			break
		}

		runStart = &sample
	}

	return runStart
}

// IdleRunStart finds when the current run of samples below the speed
// threshold began. Reports false when no such run can be established.
func (l DatabaseSampleLookup) IdleRunStart(vehicleRef string, before time.Time, lookback time.Duration, speedThreshold float64) (time.Time, bool) {
	samplesCollection := database.GetCollection("position_samples")

	cursor, err := samplesCollection.Find(context.Background(), bson.M{
		"vehicleref": vehicleRef,
		"recordedat": bson.M{
			"$lt":  before,
			"$gte": before.Add(-lookback),
		},
	}, options.Find().SetSort(bson.M{"recordedat": -1}))
	if err != nil {
		log.Error().Err(err).Msg("Failed to search position samples")
		return time.Time{}, false
	}

	var runStart time.Time
	found := false

	for cursor.Next(context.TODO()) {
		var sample fvdf.PositionSample
		if err := cursor.Decode(&sample); err != nil {
			log.Error().Err(err).Msg("Failed to decode PositionSample")
			continue
		}

		if sample.Speed >= speedThreshold {
			break
		}

		runStart = sample.RecordedAt
		found = true
	}

	return runStart, found
}
