package trips

import (
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
)

const (
	// A reporting gap longer than this inside an ignition-on run splits the run
	maxReportingGap = 3 * time.Minute

	// Consecutive stationary time that closes an idle_gap trip
	idleGapDuration = 3 * time.Minute

	// Great-circle distances under this are GPS jitter, not driving
	minimumTripDistanceKM = 0.05
)

// TripSegmentationStrategy turns an ordered run of one vehicle's samples into
// closed trips. Implementations must be pure - the same samples always produce
// the same trips, with no dependence on the wall clock
type TripSegmentationStrategy interface {
	Name() fvdf.SegmentationMethod
	Segment(samples []*fvdf.PositionSample) []*fvdf.Trip
}

// buildTrip converts a closed window of samples into a trip record, or nil
// when the window is degenerate
func buildTrip(method fvdf.SegmentationMethod, window []*fvdf.PositionSample) *fvdf.Trip {
	if len(window) < 2 {
		return nil
	}

	first := window[0]
	last := window[len(window)-1]
	if !last.RecordedAt.After(first.RecordedAt) {
		return nil
	}

	// Odometer advance is ground truth when the device reports it, otherwise
	// sum the great-circle legs between consecutive fixes
	distance := last.OdometerTotal - first.OdometerTotal
	distanceSource := fvdf.DistanceSourceOdometer
	if first.OdometerTotal <= 0 || last.OdometerTotal <= 0 || distance <= 0 {
		distance = greatCircleKM(window)
		distanceSource = fvdf.DistanceSourceGreatCircle

		if distance < minimumTripDistanceKM {
			return nil
		}
	}

	var maxSpeed float64
	var totalSpeed float64
	for _, sample := range window {
		if sample.Speed > maxSpeed {
			maxSpeed = sample.Speed
		}
		totalSpeed += sample.Speed
	}

	trip := &fvdf.Trip{
		VehicleRef: first.VehicleRef,

		StartTime: first.RecordedAt,
		EndTime:   last.RecordedAt,

		StartLocation: first.Location,
		EndLocation:   last.Location,

		Distance: distance,
		MaxSpeed: maxSpeed,
		AvgSpeed: totalSpeed / float64(len(window)),
		Duration: last.RecordedAt.Sub(first.RecordedAt).Seconds(),

		SegmentationMethod: method,
		DistanceSource:     distanceSource,
		SampleCount:        len(window),
	}
	trip.PrimaryIdentifier = trip.GenerateIdentifier()

	return trip
}

func greatCircleKM(window []*fvdf.PositionSample) float64 {
	var metres float64

	for i := 1; i < len(window); i++ {
		metres += window[i-1].Location.Distance(&window[i].Location)
	}

	return metres / 1000
}

func appendTrip(trips []*fvdf.Trip, method fvdf.SegmentationMethod, window []*fvdf.PositionSample) []*fvdf.Trip {
	if trip := buildTrip(method, window); trip != nil {
		trips = append(trips, trip)
	}

	return trips
}
