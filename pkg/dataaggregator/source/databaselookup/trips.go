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

const maximumTripResults = 500

func (s Source) TripQuery(tripQuery query.Trip) (*fvdf.Trip, error) {
	collection := database.GetCollection("trips")
	var trip *fvdf.Trip
	collection.FindOne(context.Background(), tripQuery.ToBson()).Decode(&trip)

	if trip == nil {
		return nil, errors.New("could not find a matching Trip")
	}

	return trip, nil
}

func (s Source) TripsQuery(tripsQuery query.Trips) ([]*fvdf.Trip, error) {
	collection := database.GetCollection("trips")

	opts := options.Find().
		SetSort(bson.D{{Key: "starttime", Value: -1}}).
		SetLimit(maximumTripResults)

	cursor, err := collection.Find(context.Background(), tripsQuery.ToBson(), opts)
	if err != nil {
		return nil, err
	}

	trips := []*fvdf.Trip{}
	if err := cursor.All(context.Background(), &trips); err != nil {
		return nil, err
	}

	return trips, nil
}
