package fvdf

import "math"

const earthRadiusMetres = 6371000

type Location struct {
	Type        string    `json:"type" groups:"basic" bson:"type"`
	Coordinates []float64 `json:"coordinates" groups:"basic" bson:"coordinates"`
}

func NewPoint(longitude float64, latitude float64) Location {
	return Location{
		Type:        "Point",
		Coordinates: []float64{longitude, latitude},
	}
}

func (l *Location) Longitude() float64 {
	return l.Coordinates[0]
}

func (l *Location) Latitude() float64 {
	return l.Coordinates[1]
}

// Distance returns the great-circle distance to the other location in metres
func (l *Location) Distance(other *Location) float64 {
	lat1 := l.Coordinates[1] * math.Pi / 180
	lat2 := other.Coordinates[1] * math.Pi / 180
	deltaLat := (other.Coordinates[1] - l.Coordinates[1]) * math.Pi / 180
	deltaLon := (other.Coordinates[0] - l.Coordinates[0]) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMetres * c
}

// Midpoint returns the equal-weight midpoint between the two locations
func (l *Location) Midpoint(other *Location) Location {
	return NewPoint(
		(l.Coordinates[0]+other.Coordinates[0])/2,
		(l.Coordinates[1]+other.Coordinates[1])/2,
	)
}
