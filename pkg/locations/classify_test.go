package locations

import (
	"testing"
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clusterFromVisits replays arrivals through the merge path so the pattern
// table fills in the same way production does
func clusterFromVisits(t *testing.T, dwellLength time.Duration, arrivals []time.Time) *fvdf.LearnedLocation {
	t.Helper()

	var cluster *fvdf.LearnedLocation

	for _, arrival := range arrivals {
		dwell := dwellAt(-1.8904, 52.4862, arrival, dwellLength)

		if cluster == nil {
			created, isNew := Merge(nil, dwell, DefaultMergeRadiusMetres)
			require.True(t, isNew)
			cluster = created

			continue
		}

		merged, isNew := Merge([]*fvdf.LearnedLocation{cluster}, dwell, DefaultMergeRadiusMetres)
		require.False(t, isNew)
		cluster = merged
	}

	return cluster
}

func day(dayOffset int, hour int, minute int) time.Time {
	return time.Date(2024, 3, 1+dayOffset, hour, minute, 0, 0, time.UTC)
}

func TestClassifyNeedsThreeVisits(t *testing.T) {
	cluster := clusterFromVisits(t, time.Hour, []time.Time{
		day(0, 9, 0),
		day(1, 9, 0),
	})

	assert.Equal(t, fvdf.LocationTypeUnknown, Classify(cluster))
}

func TestTwiceDailyParkingClassifiesFrequent(t *testing.T) {
	// School-run pattern: 20 minute stops at 08:00 and 18:00 for ten days.
	// The dual morning/evening pattern wins even though the dwells are short
	// and plentiful enough for the other buckets
	var arrivals []time.Time
	for dayOffset := 0; dayOffset < 10; dayOffset++ {
		arrivals = append(arrivals, day(dayOffset, 8, 0), day(dayOffset, 18, 0))
	}

	cluster := clusterFromVisits(t, 20*time.Minute, arrivals)
	require.Equal(t, 20, cluster.VisitCount)

	locationType := Classify(cluster)

	assert.Equal(t, fvdf.LocationTypeFrequent, locationType)
	assert.NotEqual(t, fvdf.LocationTypeHome, locationType)
	assert.Equal(t, 1.0, cluster.Confidence)
}

func TestOvernightClusterClassifiesHome(t *testing.T) {
	var arrivals []time.Time
	for dayOffset := 0; dayOffset < 12; dayOffset++ {
		arrivals = append(arrivals, day(dayOffset, 23, 15))
	}

	cluster := clusterFromVisits(t, 9*time.Hour, arrivals)

	assert.Equal(t, fvdf.LocationTypeHome, Classify(cluster))
}

func TestDaytimeClusterClassifiesWork(t *testing.T) {
	var arrivals []time.Time
	for dayOffset := 0; dayOffset < 16; dayOffset++ {
		arrivals = append(arrivals, day(dayOffset, 8, 45))
	}

	cluster := clusterFromVisits(t, 8*time.Hour, arrivals)

	assert.Equal(t, fvdf.LocationTypeWork, Classify(cluster))
}

func TestShortStopsClassifyParking(t *testing.T) {
	// Five quick lunchtime stops - too few for the work rule, too brief to be
	// anything else
	var arrivals []time.Time
	for dayOffset := 0; dayOffset < 5; dayOffset++ {
		arrivals = append(arrivals, day(dayOffset, 13, 0))
	}

	cluster := clusterFromVisits(t, 10*time.Minute, arrivals)

	assert.Equal(t, fvdf.LocationTypeParking, Classify(cluster))
}

func TestIrregularLongStopsClassifyFrequent(t *testing.T) {
	cluster := clusterFromVisits(t, 45*time.Minute, []time.Time{
		day(0, 7, 0),
		day(1, 13, 0),
		day(2, 23, 0),
		day(3, 7, 30),
		day(4, 14, 0),
		day(5, 23, 30),
	})

	assert.Equal(t, fvdf.LocationTypeFrequent, Classify(cluster))
}

func TestClassificationCanFlipAsVisitsAccumulate(t *testing.T) {
	var arrivals []time.Time
	for dayOffset := 0; dayOffset < 9; dayOffset++ {
		arrivals = append(arrivals, day(dayOffset, 22, 30))
	}

	cluster := clusterFromVisits(t, 10*time.Hour, arrivals)
	require.NotEqual(t, fvdf.LocationTypeHome, Classify(cluster))

	// The tenth overnight stay tips it over the home threshold
	merged, _ := Merge([]*fvdf.LearnedLocation{cluster}, dwellAt(-1.8904, 52.4862, day(9, 22, 30), 10*time.Hour), DefaultMergeRadiusMetres)

	assert.Equal(t, fvdf.LocationTypeHome, Classify(merged))
}
