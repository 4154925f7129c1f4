package locations

import (
	"context"
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/database"
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// visitRecord is the ledger entry behind each merged dwell. The unique index
// on the identifier is what makes merging exactly-once
type visitRecord struct {
	PrimaryIdentifier string

	VehicleRef string

	Point fvdf.Location

	Arrival         time.Time
	DurationSeconds float64

	CreationDateTime time.Time
}

func vehiclesWithStops(from time.Time, to time.Time) ([]string, error) {
	tripsCollection := database.GetCollection("trips")

	endFilter := bson.M{"$lte": to}
	if !from.IsZero() {
		endFilter["$gte"] = from
	}

	tripVehicles, err := tripsCollection.Distinct(context.Background(), "vehicleref", bson.M{
		"segmentationmethod": fvdf.SegmentationMethodIgnition,
		"endtime":            endFilter,
	})
	if err != nil {
		return nil, err
	}

	eventsCollection := database.GetCollection("events")

	createdFilter := bson.M{"$lte": to}
	if !from.IsZero() {
		createdFilter["$gte"] = from
	}

	idleVehicles, err := eventsCollection.Distinct(context.Background(), "vehicleref", bson.M{
		"eventtype":        fvdf.EventTypeIdleTooLong,
		"creationdatetime": createdFilter,
	})
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var vehicleRefs []string

	for _, value := range append(tripVehicles, idleVehicles...) {
		if vehicleRef, ok := value.(string); ok && !seen[vehicleRef] {
			seen[vehicleRef] = true
			vehicleRefs = append(vehicleRefs, vehicleRef)
		}
	}

	return vehicleRefs, nil
}

func loadIgnitionTrips(vehicleRef string) ([]*fvdf.Trip, error) {
	tripsCollection := database.GetCollection("trips")

	cursor, err := tripsCollection.Find(context.Background(), bson.M{
		"vehicleref":         vehicleRef,
		"segmentationmethod": fvdf.SegmentationMethodIgnition,
	}, options.Find().SetSort(bson.M{"starttime": 1}))
	if err != nil {
		return nil, err
	}

	var trips []*fvdf.Trip
	if err := cursor.All(context.Background(), &trips); err != nil {
		return nil, err
	}

	return trips, nil
}

func loadIdleEvents(vehicleRef string) ([]*fvdf.Event, error) {
	eventsCollection := database.GetCollection("events")

	cursor, err := eventsCollection.Find(context.Background(), bson.M{
		"vehicleref": vehicleRef,
		"eventtype":  fvdf.EventTypeIdleTooLong,
	}, options.Find().SetSort(bson.M{"creationdatetime": 1}))
	if err != nil {
		return nil, err
	}

	var events []*fvdf.Event
	if err := cursor.All(context.Background(), &events); err != nil {
		return nil, err
	}

	return events, nil
}

func loadClusters(vehicleRef string) ([]*fvdf.LearnedLocation, error) {
	locationsCollection := database.GetCollection("learned_locations")

	cursor, err := locationsCollection.Find(context.Background(), bson.M{
		"vehicleref": vehicleRef,
	}, options.Find().SetSort(bson.M{"firstvisit": 1}))
	if err != nil {
		return nil, err
	}

	var clusters []*fvdf.LearnedLocation
	if err := cursor.All(context.Background(), &clusters); err != nil {
		return nil, err
	}

	return clusters, nil
}

// claimVisit records a dwell in the visits ledger. Only the first sweep to
// see a dwell gets to merge it, later sweeps find the claim already taken
func claimVisit(dwell Dwell) (bool, error) {
	visitsCollection := database.GetCollection("location_visits")

	_, err := visitsCollection.InsertOne(context.Background(), visitRecord{
		PrimaryIdentifier: dwell.Identifier(),

		VehicleRef: dwell.VehicleRef,

		Point: dwell.Point,

		Arrival:         dwell.Arrival,
		DurationSeconds: dwell.Duration.Seconds(),

		CreationDateTime: time.Now(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func upsertClusters(clusters map[string]*fvdf.LearnedLocation) error {
	locationsCollection := database.GetCollection("learned_locations")

	now := time.Now()
	var locationOperations []mongo.WriteModel

	for _, cluster := range clusters {
		cluster.ModificationDateTime = now

		bsonRep, _ := bson.Marshal(bson.M{
			"$set":         cluster,
			"$setOnInsert": bson.M{"creationdatetime": now},
		})

		updateModel := mongo.NewUpdateOneModel()
		updateModel.SetFilter(bson.M{"primaryidentifier": cluster.PrimaryIdentifier})
		updateModel.SetUpdate(bsonRep)
		updateModel.SetUpsert(true)

		locationOperations = append(locationOperations, updateModel)
	}

	_, err := locationsCollection.BulkWrite(context.Background(), locationOperations, options.BulkWrite().SetOrdered(false))

	return err
}
