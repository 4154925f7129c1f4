package databaselookup

import (
	"errors"
	"reflect"

	"github.com/fleetpulse/fleetpulse/pkg/dataaggregator/query"
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
)

type Source struct {
}

func (s Source) GetName() string {
	return "Database Lookup"
}

func (s Source) Supports() []reflect.Type {
	return []reflect.Type{
		reflect.TypeOf(fvdf.Event{}),
		reflect.TypeOf([]*fvdf.Event{}),
		reflect.TypeOf(fvdf.Trip{}),
		reflect.TypeOf([]*fvdf.Trip{}),
		reflect.TypeOf(fvdf.LearnedLocation{}),
		reflect.TypeOf([]*fvdf.LearnedLocation{}),
		reflect.TypeOf(fvdf.DailyHealthScore{}),
		reflect.TypeOf([]*fvdf.DailyHealthScore{}),
	}
}

func (s Source) Lookup(q any) (interface{}, error) {
	switch q.(type) {
	case query.Event:
		return s.EventQuery(q.(query.Event))
	case query.Events:
		return s.EventsQuery(q.(query.Events))
	case query.Trip:
		return s.TripQuery(q.(query.Trip))
	case query.Trips:
		return s.TripsQuery(q.(query.Trips))
	case query.LearnedLocation:
		return s.LearnedLocationQuery(q.(query.LearnedLocation))
	case query.LearnedLocations:
		return s.LearnedLocationsQuery(q.(query.LearnedLocations))
	case query.LearnedLocationsNear:
		return s.LearnedLocationsNearQuery(q.(query.LearnedLocationsNear))
	case query.DailyHealthScore:
		return s.DailyHealthScoreQuery(q.(query.DailyHealthScore))
	case query.DailyHealthScores:
		return s.DailyHealthScoresQuery(q.(query.DailyHealthScores))
	}

	return nil, errors.New("unable to lookup")
}
