package trips

import (
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/fleetpulse/fleetpulse/pkg/util"
)

// IdleGapStrategy segments driving by stationary gaps instead of ignition
// edges, for devices whose ignition flag sticks on. Only ignition-on samples
// are considered. A trip opens on the first moving sample and closes once the
// vehicle has sat at speed zero for idleGapDuration, with the trip ending at
// the arrival fix rather than at the end of the idle tail.
//
// Stops shorter than idleGapDuration stay inside the trip
type IdleGapStrategy struct{}

func (s IdleGapStrategy) Name() fvdf.SegmentationMethod {
	return fvdf.SegmentationMethodIdleGap
}

func (s IdleGapStrategy) Segment(samples []*fvdf.PositionSample) []*fvdf.Trip {
	scoped := make([]*fvdf.PositionSample, len(samples))
	copy(scoped, samples)
	util.InPlaceFilter(&scoped, func(sample *fvdf.PositionSample) bool {
		return sample.IgnitionOn
	})

	var trips []*fvdf.Trip
	var window []*fvdf.PositionSample
	var idleStart time.Time

	for _, sample := range scoped {
		if len(window) == 0 {
			if sample.Speed > 0 {
				window = append(window, sample)
			}

			continue
		}

		window = append(window, sample)

		if sample.Speed > 0 {
			idleStart = time.Time{}

			continue
		}

		if idleStart.IsZero() {
			idleStart = sample.RecordedAt
		}

		if sample.RecordedAt.Sub(idleStart) >= idleGapDuration {
			trips = appendTrip(trips, s.Name(), trimToArrival(window, idleStart))
			window = nil
			idleStart = time.Time{}
		}
	}

	return trips
}

// trimToArrival cuts the stationary tail off a closing window so the trip ends
// at the first zero-speed fix of the idle run
func trimToArrival(window []*fvdf.PositionSample, idleStart time.Time) []*fvdf.PositionSample {
	for i, sample := range window {
		if !sample.RecordedAt.Before(idleStart) {
			return window[:i+1]
		}
	}

	return window
}
