package locations

import (
	"fmt"
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
)

// MinimumDwell is how long a vehicle must sit between two trips for the stop
// to count as a visit
const MinimumDwell = 15 * time.Minute

// Dwell is one completed parking or idle episode, the raw input a learned
// location is built from
type Dwell struct {
	VehicleRef string

	Point fvdf.Location

	Arrival  time.Time
	Duration time.Duration
}

// Identifier is stable per physical stop, so sweeping the same span twice
// merges each dwell exactly once
func (d *Dwell) Identifier() string {
	return fmt.Sprintf("DWELL:%s:%d", d.VehicleRef, d.Arrival.UTC().Unix())
}

// DwellsFromTrips pairs each trip with its successor and keeps the parking
// intervals between them that last at least minimum. Trips must be one
// vehicle's, ordered by start time
func DwellsFromTrips(trips []*fvdf.Trip, minimum time.Duration) []Dwell {
	var dwells []Dwell

	for i := 1; i < len(trips); i++ {
		previous := trips[i-1]
		next := trips[i]

		parked := next.StartTime.Sub(previous.EndTime)
		if parked < minimum {
			continue
		}

		dwells = append(dwells, Dwell{
			VehicleRef: previous.VehicleRef,

			Point: previous.EndLocation,

			Arrival:  previous.EndTime,
			Duration: parked,
		})
	}

	return dwells
}

// DwellFromIdleEvent reconstructs the idle run behind an idle_too_long event.
// The event records the run length in minutes, so the arrival is that far
// behind the event itself
func DwellFromIdleEvent(event *fvdf.Event) (Dwell, bool) {
	if event.EventType != fvdf.EventTypeIdleTooLong || event.ValueAfter <= 0 {
		return Dwell{}, false
	}

	duration := time.Duration(event.ValueAfter * float64(time.Minute))

	return Dwell{
		VehicleRef: event.VehicleRef,

		Point: event.Location,

		Arrival:  event.CreationDateTime.Add(-duration),
		Duration: duration,
	}, true
}
