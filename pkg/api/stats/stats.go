package stats

import (
	"context"
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/database"
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/fleetpulse/fleetpulse/pkg/util"
	"go.mongodb.org/mongo-driver/bson"
)

type FleetStats struct {
	Vehicles       int64
	ActiveVehicles int64

	OpenEvents       int64
	EventsBySeverity map[fvdf.EventSeverity]int64

	TripsToday int64

	LearnedLocations int64

	MeanHealthScore float64
}

var CurrentFleetStats *FleetStats

// UpdateFleetStats recalculates the fleet wide aggregates once a minute.
// The route handlers only ever read the latest snapshot
func UpdateFleetStats() {
	CurrentFleetStats = &FleetStats{
		EventsBySeverity: map[fvdf.EventSeverity]int64{},
	}

	for {
		currentTime := time.Now()
		startOfDay := util.StartOfDayUTC(currentTime)

		lastStateCollection := database.GetCollection("vehicle_last_state")
		numberVehicles, _ := lastStateCollection.CountDocuments(context.Background(), bson.D{})
		numberActiveVehicles, _ := lastStateCollection.CountDocuments(context.Background(), bson.M{
			"lastsample.recordedat": bson.M{"$gte": currentTime.Add(-24 * time.Hour)},
		})

		eventsCollection := database.GetCollection("events")
		numberOpenEvents, _ := eventsCollection.CountDocuments(context.Background(), bson.M{"acknowledged": false})

		eventsBySeverity := map[fvdf.EventSeverity]int64{}
		for _, severity := range []fvdf.EventSeverity{
			fvdf.EventSeverityInfo, fvdf.EventSeverityWarning,
			fvdf.EventSeverityError, fvdf.EventSeverityCritical,
		} {
			count, _ := eventsCollection.CountDocuments(context.Background(), bson.M{"severity": severity})
			eventsBySeverity[severity] = count
		}

		tripsCollection := database.GetCollection("trips")
		numberTripsToday, _ := tripsCollection.CountDocuments(context.Background(), bson.M{
			"segmentationmethod": fvdf.SegmentationMethodIgnition,
			"starttime":          bson.M{"$gte": startOfDay},
		})

		locationsCollection := database.GetCollection("learned_locations")
		numberLocations, _ := locationsCollection.CountDocuments(context.Background(), bson.D{})

		healthCollection := database.GetCollection("vehicle_health_days")
		meanHealthScore := 0.0
		scoreCursor, err := healthCollection.Aggregate(context.Background(), bson.A{
			bson.M{"$match": bson.M{"date": startOfDay.Add(-24 * time.Hour)}},
			bson.M{"$group": bson.M{"_id": nil, "meanscore": bson.M{"$avg": "$score"}}},
		})
		if err == nil {
			var meanResult []struct {
				MeanScore float64 `bson:"meanscore"`
			}
			scoreCursor.All(context.Background(), &meanResult)

			if len(meanResult) > 0 {
				meanHealthScore = meanResult[0].MeanScore
			}
		}

		CurrentFleetStats = &FleetStats{
			Vehicles:       numberVehicles,
			ActiveVehicles: numberActiveVehicles,

			OpenEvents:       numberOpenEvents,
			EventsBySeverity: eventsBySeverity,

			TripsToday: numberTripsToday,

			LearnedLocations: numberLocations,

			MeanHealthScore: meanHealthScore,
		}

		time.Sleep(1 * time.Minute)
	}
}
