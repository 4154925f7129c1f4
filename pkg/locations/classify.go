package locations

import (
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
)

const (
	classifyMinimumVisits = 3

	homeOvernightFraction = 0.6
	homeMinimumVisits     = 10

	workDaytimeFraction = 0.7
	workMinimumVisits   = 15

	parkingMeanDwell = 30 * time.Minute

	strongBucketMinimum  = 3
	strongBucketFraction = 0.3
)

// Classify derives a cluster's purpose from its visit statistics. Clusters
// with too few visits stay unknown until the evidence builds up
func Classify(location *fvdf.LearnedLocation) fvdf.LocationType {
	if location.VisitCount < classifyMinimumVisits {
		return fvdf.LocationTypeUnknown
	}

	pattern := location.VisitPattern
	total := float64(pattern.Total())

	if total > 0 {
		// A place visited both in the morning and in the evening is an errand
		// stop, whatever the other signals say - a school run or a depot
		// visited twice a day would otherwise look like home
		if strongBucket(pattern.Morning, total) && strongBucket(pattern.Evening, total) {
			return fvdf.LocationTypeFrequent
		}

		if location.VisitCount >= homeMinimumVisits && float64(pattern.Night)/total >= homeOvernightFraction {
			return fvdf.LocationTypeHome
		}

		if location.VisitCount >= workMinimumVisits && float64(pattern.Morning+pattern.Afternoon)/total >= workDaytimeFraction {
			return fvdf.LocationTypeWork
		}
	}

	if location.MeanDwellSeconds() < parkingMeanDwell.Seconds() {
		return fvdf.LocationTypeParking
	}

	return fvdf.LocationTypeFrequent
}

func strongBucket(count int, total float64) bool {
	return count >= strongBucketMinimum && float64(count) >= strongBucketFraction*total
}
