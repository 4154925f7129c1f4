package query

import (
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"go.mongodb.org/mongo-driver/bson"
)

type Trip struct {
	PrimaryIdentifier string
}

func (t *Trip) ToBson() bson.M {
	if t.PrimaryIdentifier != "" {
		return bson.M{"primaryidentifier": t.PrimaryIdentifier}
	}

	return nil
}

type Trips struct {
	VehicleRef         string
	SegmentationMethod fvdf.SegmentationMethod

	From time.Time
	To   time.Time
}

func (t *Trips) ToBson() bson.M {
	filter := bson.M{}

	if t.VehicleRef != "" {
		filter["vehicleref"] = t.VehicleRef
	}
	if t.SegmentationMethod != "" {
		filter["segmentationmethod"] = t.SegmentationMethod
	}

	started := bson.M{}
	if !t.From.IsZero() {
		started["$gte"] = t.From
	}
	if !t.To.IsZero() {
		started["$lte"] = t.To
	}
	if len(started) > 0 {
		filter["starttime"] = started
	}

	return filter
}
