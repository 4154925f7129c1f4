package locations

import (
	"fmt"
	"math"

	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/google/uuid"
)

const DefaultMergeRadiusMetres = 50.0

// Merge folds a dwell into the nearest existing cluster within mergeRadius
// metres, or starts a new cluster when none is close enough. Returns the
// touched cluster and whether it was created.
//
// The merged centroid is the plain midpoint of the old centroid and the new
// point, not a count-weighted mean, so a cluster drifts towards wherever the
// vehicle has parked recently
func Merge(clusters []*fvdf.LearnedLocation, dwell Dwell, mergeRadius float64) (*fvdf.LearnedLocation, bool) {
	var nearest *fvdf.LearnedLocation
	nearestDistance := mergeRadius

	for _, cluster := range clusters {
		distance := cluster.Centroid.Distance(&dwell.Point)
		if distance <= nearestDistance {
			nearest = cluster
			nearestDistance = distance
		}
	}

	if nearest == nil {
		cluster := &fvdf.LearnedLocation{
			PrimaryIdentifier: fmt.Sprintf(fvdf.LearnedLocationIDFormat, uuid.New().String()),

			VehicleRef: dwell.VehicleRef,

			Centroid:     dwell.Point,
			RadiusMetres: mergeRadius,

			VisitCount:    1,
			TotalDuration: dwell.Duration.Seconds(),

			FirstVisit: dwell.Arrival,
			LastVisit:  dwell.Arrival,

			LocationType: fvdf.LocationTypeUnknown,
		}
		cluster.VisitPattern.Record(dwell.Arrival)
		cluster.Confidence = Confidence(cluster.VisitCount)

		return cluster, true
	}

	nearest.Centroid = nearest.Centroid.Midpoint(&dwell.Point)
	nearest.VisitCount += 1
	nearest.TotalDuration += dwell.Duration.Seconds()

	if dwell.Arrival.Before(nearest.FirstVisit) {
		nearest.FirstVisit = dwell.Arrival
	}
	if dwell.Arrival.After(nearest.LastVisit) {
		nearest.LastVisit = dwell.Arrival
	}

	nearest.VisitPattern.Record(dwell.Arrival)
	nearest.Confidence = Confidence(nearest.VisitCount)

	return nearest, false
}

// Confidence scales linearly with visit count and saturates at 20 visits
func Confidence(visitCount int) float64 {
	return math.Min(1, float64(visitCount)/20)
}
