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

const maximumEventResults = 500

func (s Source) EventQuery(eventQuery query.Event) (*fvdf.Event, error) {
	collection := database.GetCollection("events")
	var event *fvdf.Event
	collection.FindOne(context.Background(), eventQuery.ToBson()).Decode(&event)

	if event == nil {
		return nil, errors.New("could not find a matching Event")
	}

	return event, nil
}

func (s Source) EventsQuery(eventsQuery query.Events) ([]*fvdf.Event, error) {
	collection := database.GetCollection("events")

	opts := options.Find().
		SetSort(bson.D{{Key: "creationdatetime", Value: -1}}).
		SetLimit(maximumEventResults)

	cursor, err := collection.Find(context.Background(), eventsQuery.ToBson(), opts)
	if err != nil {
		return nil, err
	}

	events := []*fvdf.Event{}
	if err := cursor.All(context.Background(), &events); err != nil {
		return nil, err
	}

	return events, nil
}
