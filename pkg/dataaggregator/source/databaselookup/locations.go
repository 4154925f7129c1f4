package databaselookup

import (
	"context"
	"errors"

	"github.com/fleetpulse/fleetpulse/pkg/dataaggregator/query"
	"github.com/fleetpulse/fleetpulse/pkg/database"
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s Source) LearnedLocationQuery(locationQuery query.LearnedLocation) (*fvdf.LearnedLocation, error) {
	collection := database.GetCollection("learned_locations")
	var location *fvdf.LearnedLocation
	collection.FindOne(context.Background(), locationQuery.ToBson()).Decode(&location)

	if location == nil {
		return nil, errors.New("could not find a matching Learned Location")
	}

	return location, nil
}

func (s Source) LearnedLocationsQuery(locationsQuery query.LearnedLocations) ([]*fvdf.LearnedLocation, error) {
	collection := database.GetCollection("learned_locations")

	opts := options.Find().SetSort(bson.D{{Key: "visitcount", Value: -1}})

	cursor, err := collection.Find(context.Background(), locationsQuery.ToBson(), opts)
	if err != nil {
		return nil, err
	}

	locations := []*fvdf.LearnedLocation{}
	if err := cursor.All(context.Background(), &locations); err != nil {
		return nil, err
	}

	return locations, nil
}

// LearnedLocationsNearQuery relies on the 2dsphere index on centroid, which
// also orders the results nearest first
func (s Source) LearnedLocationsNearQuery(nearQuery query.LearnedLocationsNear) ([]*fvdf.LearnedLocation, error) {
	collection := database.GetCollection("learned_locations")

	cursor, err := collection.Find(context.Background(), nearQuery.ToBson())
	if err != nil {
		return nil, err
	}

	locations := []*fvdf.LearnedLocation{}
	if err := cursor.All(context.Background(), &locations); err != nil {
		return nil, err
	}

	return locations, nil
}
