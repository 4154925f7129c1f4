package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/database"
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func lastStateCacheKey(vehicleRef string) string {
	return fmt.Sprintf("fleetpulse:laststate:%s", vehicleRef)
}

// getLastState returns the most recent known sample for the vehicle, from
// cache when warm and the database otherwise. Nil for a never-seen vehicle.
func getLastState(vehicleRef string) *fvdf.VehicleLastState {
	cachedState, _ := lastSampleCache.Get(context.Background(), lastStateCacheKey(vehicleRef))

	if cachedState != "" {
		var lastState *fvdf.VehicleLastState
		if err := json.Unmarshal([]byte(cachedState), &lastState); err == nil {
			return lastState
		}
	}

	lastStateCollection := database.GetCollection("vehicle_last_state")

	var lastState *fvdf.VehicleLastState
	lastStateCollection.FindOne(context.Background(), bson.M{"vehicleref": vehicleRef}).Decode(&lastState)

	return lastState
}

func updateLastState(vehicleRef string, sample *fvdf.PositionSample) {
	lastState := &fvdf.VehicleLastState{
		VehicleRef: vehicleRef,

		LastSample: *sample,

		ModificationDateTime: time.Now(),
	}

	lastStateJSON, _ := json.Marshal(lastState)
	lastSampleCache.Set(context.Background(), lastStateCacheKey(vehicleRef), string(lastStateJSON))

	bsonRep, _ := bson.Marshal(bson.M{"$set": lastState})

	lastStateCollection := database.GetCollection("vehicle_last_state")
	_, err := lastStateCollection.UpdateOne(context.Background(),
		bson.M{"vehicleref": vehicleRef}, bsonRep, options.Update().SetUpsert(true))
	if err != nil {
		log.Error().Err(err).Str("vehicle", vehicleRef).Msg("Failed to update vehicle last state")
	}
}
