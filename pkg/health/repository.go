package health

import (
	"context"
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/database"
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func vehiclesWithSamplesOn(day time.Time) ([]string, error) {
	samplesCollection := database.GetCollection("position_samples")

	values, err := samplesCollection.Distinct(context.Background(), "vehicleref", bson.M{
		"recordedat": bson.M{
			"$gte": day,
			"$lt":  day.Add(24 * time.Hour),
		},
	})
	if err != nil {
		return nil, err
	}

	vehicleRefs := make([]string, 0, len(values))
	for _, value := range values {
		if vehicleRef, ok := value.(string); ok {
			vehicleRefs = append(vehicleRefs, vehicleRef)
		}
	}

	return vehicleRefs, nil
}

func loadDaySamples(vehicleRef string, day time.Time) ([]*fvdf.PositionSample, error) {
	samplesCollection := database.GetCollection("position_samples")

	cursor, err := samplesCollection.Find(context.Background(), bson.M{
		"vehicleref": vehicleRef,
		"recordedat": bson.M{
			"$gte": day,
			"$lt":  day.Add(24 * time.Hour),
		},
	}, options.Find().SetSort(bson.M{"recordedat": 1}))
	if err != nil {
		return nil, err
	}

	var samples []*fvdf.PositionSample
	if err := cursor.All(context.Background(), &samples); err != nil {
		return nil, err
	}

	return samples, nil
}

func loadDayTrips(vehicleRef string, day time.Time) ([]*fvdf.Trip, error) {
	tripsCollection := database.GetCollection("trips")

	cursor, err := tripsCollection.Find(context.Background(), bson.M{
		"vehicleref":         vehicleRef,
		"segmentationmethod": fvdf.SegmentationMethodIgnition,
		"starttime": bson.M{
			"$gte": day,
			"$lt":  day.Add(24 * time.Hour),
		},
	})
	if err != nil {
		return nil, err
	}

	var trips []*fvdf.Trip
	if err := cursor.All(context.Background(), &trips); err != nil {
		return nil, err
	}

	return trips, nil
}

func loadDayEvents(vehicleRef string, day time.Time) ([]*fvdf.Event, error) {
	eventsCollection := database.GetCollection("events")

	cursor, err := eventsCollection.Find(context.Background(), bson.M{
		"vehicleref": vehicleRef,
		"creationdatetime": bson.M{
			"$gte": day,
			"$lt":  day.Add(24 * time.Hour),
		},
	})
	if err != nil {
		return nil, err
	}

	var events []*fvdf.Event
	if err := cursor.All(context.Background(), &events); err != nil {
		return nil, err
	}

	return events, nil
}

// loadPriorScore returns the most recent score from before the given day, or
// nil when the vehicle has never been scored
func loadPriorScore(vehicleRef string, day time.Time) (*fvdf.DailyHealthScore, error) {
	healthCollection := database.GetCollection("vehicle_health_days")

	var prior fvdf.DailyHealthScore
	err := healthCollection.FindOne(context.Background(), bson.M{
		"vehicleref": vehicleRef,
		"date":       bson.M{"$lt": day},
	}, options.FindOne().SetSort(bson.M{"date": -1})).Decode(&prior)

	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &prior, nil
}

func upsertScore(score *fvdf.DailyHealthScore) error {
	healthCollection := database.GetCollection("vehicle_health_days")

	now := time.Now()
	score.ModificationDateTime = now

	bsonRep, _ := bson.Marshal(bson.M{
		"$set":         score,
		"$setOnInsert": bson.M{"creationdatetime": now},
	})

	opts := options.Update().SetUpsert(true)
	_, err := healthCollection.UpdateOne(context.Background(), bson.M{
		"primaryidentifier": score.PrimaryIdentifier,
	}, bsonRep, opts)

	return err
}
