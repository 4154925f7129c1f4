package query

import (
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"go.mongodb.org/mongo-driver/bson"
)

type Event struct {
	PrimaryIdentifier string
}

func (e *Event) ToBson() bson.M {
	if e.PrimaryIdentifier != "" {
		return bson.M{"primaryidentifier": e.PrimaryIdentifier}
	}

	return nil
}

type Events struct {
	VehicleRef   string
	EventType    fvdf.EventType
	Severity     fvdf.EventSeverity
	Acknowledged *bool

	From time.Time
	To   time.Time
}

func (e *Events) ToBson() bson.M {
	filter := bson.M{}

	if e.VehicleRef != "" {
		filter["vehicleref"] = e.VehicleRef
	}
	if e.EventType != "" {
		filter["eventtype"] = e.EventType
	}
	if e.Severity != "" {
		filter["severity"] = e.Severity
	}
	if e.Acknowledged != nil {
		filter["acknowledged"] = *e.Acknowledged
	}

	created := bson.M{}
	if !e.From.IsZero() {
		created["$gte"] = e.From
	}
	if !e.To.IsZero() {
		created["$lte"] = e.To
	}
	if len(created) > 0 {
		filter["creationdatetime"] = created
	}

	return filter
}
