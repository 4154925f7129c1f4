package query

import (
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"go.mongodb.org/mongo-driver/bson"
)

type LearnedLocation struct {
	PrimaryIdentifier string
}

func (l *LearnedLocation) ToBson() bson.M {
	if l.PrimaryIdentifier != "" {
		return bson.M{"primaryidentifier": l.PrimaryIdentifier}
	}

	return nil
}

type LearnedLocations struct {
	VehicleRef    string
	LocationType  fvdf.LocationType
	MinimumVisits int
}

func (l *LearnedLocations) ToBson() bson.M {
	filter := bson.M{}

	if l.VehicleRef != "" {
		filter["vehicleref"] = l.VehicleRef
	}
	if l.LocationType != "" {
		filter["locationtype"] = l.LocationType
	}
	if l.MinimumVisits > 0 {
		filter["visitcount"] = bson.M{"$gte": l.MinimumVisits}
	}

	return filter
}

type LearnedLocationsNear struct {
	VehicleRef string

	Longitude float64
	Latitude  float64

	MaxDistanceMetres float64
}

func (l *LearnedLocationsNear) ToBson() bson.M {
	filter := bson.M{
		"centroid": bson.M{
			"$nearSphere": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": bson.A{l.Longitude, l.Latitude},
				},
				"$maxDistance": l.MaxDistanceMetres,
			},
		},
	}

	if l.VehicleRef != "" {
		filter["vehicleref"] = l.VehicleRef
	}

	return filter
}
