package trips

import (
	"context"
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/database"
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func vehiclesWithSamples(from time.Time, to time.Time) ([]string, error) {
	samplesCollection := database.GetCollection("position_samples")

	recordedFilter := bson.M{"$lte": to}
	if !from.IsZero() {
		recordedFilter["$gte"] = from
	}

	values, err := samplesCollection.Distinct(context.Background(), "vehicleref", bson.M{
		"recordedat": recordedFilter,
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

func loadSamples(vehicleRef string, from time.Time, to time.Time) ([]*fvdf.PositionSample, error) {
	samplesCollection := database.GetCollection("position_samples")

	recordedFilter := bson.M{"$lte": to}
	if !from.IsZero() {
		recordedFilter["$gte"] = from
	}

	cursor, err := samplesCollection.Find(context.Background(), bson.M{
		"vehicleref": vehicleRef,
		"recordedat": recordedFilter,
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

// replaceTrips deletes every stored trip for the vehicle and method that
// overlaps the re-segmented span and upserts the fresh set. Stable trip
// identifiers make replaying the same span a no-op
func replaceTrips(vehicleRef string, method fvdf.SegmentationMethod, from time.Time, trips []*fvdf.Trip) error {
	tripsCollection := database.GetCollection("trips")

	_, err := tripsCollection.DeleteMany(context.Background(), bson.M{
		"vehicleref":         vehicleRef,
		"segmentationmethod": method,
		"endtime":            bson.M{"$gte": from},
	})
	if err != nil {
		return err
	}

	if len(trips) == 0 {
		return nil
	}

	now := time.Now()
	var tripOperations []mongo.WriteModel

	for _, trip := range trips {
		trip.ModificationDateTime = now

		bsonRep, _ := bson.Marshal(bson.M{
			"$set":         trip,
			"$setOnInsert": bson.M{"creationdatetime": now},
		})

		updateModel := mongo.NewUpdateOneModel()
		updateModel.SetFilter(bson.M{"primaryidentifier": trip.PrimaryIdentifier})
		updateModel.SetUpdate(bsonRep)
		updateModel.SetUpsert(true)

		tripOperations = append(tripOperations, updateModel)
	}

	_, err = tripsCollection.BulkWrite(context.Background(), tripOperations, options.BulkWrite().SetOrdered(false))

	return err
}
