package trips

import (
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
)

// IgnitionStrategy opens a trip on an off-to-on ignition edge and closes it on
// the matching on-to-off edge. A reporting blackout longer than maxReportingGap
// in the middle of a run splits it into two trips, since the vehicle may have
// been driven out of coverage and back.
//
// A run still open at the end of the samples is not emitted - it closes on a
// later sweep once its off edge arrives
type IgnitionStrategy struct{}

func (s IgnitionStrategy) Name() fvdf.SegmentationMethod {
	return fvdf.SegmentationMethodIgnition
}

func (s IgnitionStrategy) Segment(samples []*fvdf.PositionSample) []*fvdf.Trip {
	var trips []*fvdf.Trip
	var window []*fvdf.PositionSample

	for _, sample := range samples {
		if len(window) == 0 {
			// The first sample of the feed counts as an edge when the
			// ignition is already on
			if sample.IgnitionOn {
				window = append(window, sample)
			}

			continue
		}

		gap := sample.RecordedAt.Sub(window[len(window)-1].RecordedAt)
		if sample.IgnitionOn && gap > maxReportingGap {
			trips = appendTrip(trips, s.Name(), window)
			window = []*fvdf.PositionSample{sample}

			continue
		}

		window = append(window, sample)

		if !sample.IgnitionOn {
			trips = appendTrip(trips, s.Name(), window)
			window = nil
		}
	}

	return trips
}
