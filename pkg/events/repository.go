package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/fleetpulse/fleetpulse/pkg/database"
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/fleetpulse/fleetpulse/pkg/redis_client"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const cooldownKeyPrefix = "fleetpulse:eventcooldown"

// EventSink is the persistence surface the detector emits through
type EventSink interface {
	InCooldown(event *fvdf.Event) bool
	Record(event *fvdf.Event) (bool, error)
	StartCooldown(event *fvdf.Event)
}

type Repository struct {
}

func NewRepository() *Repository {
	return &Repository{}
}

func cooldownKey(vehicleRef string, eventType fvdf.EventType) string {
	return fmt.Sprintf("%s:%s:%s", cooldownKeyPrefix, vehicleRef, eventType)
}

// InCooldown reports whether an event of this type was recorded for the
// vehicle within its cooldown window. A redis failure reports false and the
// debounce key index catches any duplicate that slips through.
func (r *Repository) InCooldown(event *fvdf.Event) bool {
	exists, err := redis_client.Client.Exists(context.Background(), cooldownKey(event.VehicleRef, event.EventType)).Result()
	if err != nil {
		log.Error().Err(err).Msg("Failed to check event cooldown")
		return false
	}

	return exists > 0
}

func (r *Repository) StartCooldown(event *fvdf.Event) {
	err := redis_client.Client.Set(context.Background(),
		cooldownKey(event.VehicleRef, event.EventType), "1", event.EventType.Cooldown()).Err()
	if err != nil {
		log.Error().Err(err).Msg("Failed to set event cooldown")
	}
}

// Record inserts the event unless its debounce key was already claimed.
// A duplicate key insert means another consumer (or a redelivery) already
// handled this window, which is reported as not-inserted rather than an error.
func (r *Repository) Record(event *fvdf.Event) (bool, error) {
	eventsCollection := database.GetCollection("events")

	_, err := eventsCollection.InsertOne(context.Background(), event)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// Acknowledge marks the event as acknowledged. Repeating the call on an
// already acknowledged event is a no-op.
func (r *Repository) Acknowledge(identifier string) (*fvdf.Event, error) {
	eventsCollection := database.GetCollection("events")

	var event *fvdf.Event
	eventsCollection.FindOne(context.Background(), bson.M{"primaryidentifier": identifier}).Decode(&event)

	if event == nil {
		return nil, errors.New("could not find a matching Event")
	}

	if event.Acknowledged {
		return event, nil
	}

	_, err := eventsCollection.UpdateOne(context.Background(),
		bson.M{"primaryidentifier": identifier},
		bson.M{"$set": bson.M{"acknowledged": true}})
	if err != nil {
		return nil, err
	}

	event.Acknowledged = true

	return event, nil
}
