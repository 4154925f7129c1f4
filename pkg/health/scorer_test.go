package health

import (
	"testing"

	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cleanDay() fvdf.DailyHealthFeatures {
	return fvdf.DailyHealthFeatures{
		VehicleRef: "V1",
		Date:       healthDay,

		SampleCount:       1400,
		ExpectedSamples:   1440,
		Completeness:      1,
		LongestGapSeconds: 300,

		TripCount:     3,
		DistanceKM:    42,
		MovingMinutes: 95,

		MinBattery:  62,
		MeanBattery: 71,
		EndBattery:  80,
	}
}

func TestScorePerfectDay(t *testing.T) {
	score := Score(cleanDay(), nil)

	assert.Equal(t, 100, score.Score)
	assert.Equal(t, 100.0, score.ConnectivityScore)
	assert.Equal(t, 100.0, score.SafetyScore)
	assert.Equal(t, 100.0, score.UtilisationScore)
	assert.Equal(t, 100.0, score.DataQualityScore)
	assert.Equal(t, 100.0, score.Confidence)
	assert.Equal(t, fvdf.HealthTrendStable, score.Trend)
	assert.Equal(t, "HEALTH:V1:2024-03-14", score.PrimaryIdentifier)
}

func TestScoreStaysInRangeOnAWretchedDay(t *testing.T) {
	features := fvdf.DailyHealthFeatures{
		VehicleRef: "V1",
		Date:       healthDay,

		SampleCount:       4,
		ExpectedSamples:   1440,
		Completeness:      0,
		LongestGapSeconds: (24 * 3600),
		ImpossibleJumps:   10,
		DriftRatio:        1,

		OverspeedEvents:  50,
		HarshEvents:      50,
		OfflineEvents:    50,
		SpeedingExposure: 1,
	}

	score := Score(features, nil)

	for _, component := range []float64{score.ConnectivityScore, score.SafetyScore, score.UtilisationScore, score.DataQualityScore} {
		assert.GreaterOrEqual(t, component, 0.0)
		assert.LessOrEqual(t, component, 100.0)
	}

	// Deductions are capped per component, never driven below the cap floor
	assert.Equal(t, 30.0, score.ConnectivityScore)
	assert.Equal(t, 30.0, score.SafetyScore)
	assert.Equal(t, 40.0, score.UtilisationScore)
	assert.Equal(t, 30.0, score.DataQualityScore)

	assert.GreaterOrEqual(t, score.Score, 0)
	assert.LessOrEqual(t, score.Score, 100)
	assert.Equal(t, 0.0, score.Confidence)

	assert.Equal(t, fvdf.HealthTrendCritical, score.Trend)
}

func TestLowConfidenceCapsHealth(t *testing.T) {
	sparse := cleanDay()
	sparse.Completeness = 0.30
	sparse.SampleCount = 430

	score := Score(sparse, nil)

	require.Equal(t, 30.0, score.Confidence)
	assert.LessOrEqual(t, score.Score, 75)
	assert.Equal(t, 75, score.Score)
}

func TestVeryLowConfidenceCapsHealthHarder(t *testing.T) {
	thin := cleanDay()
	thin.Completeness = 0.15
	thin.SampleCount = 200

	score := Score(thin, nil)

	require.Equal(t, 15.0, score.Confidence)
	assert.LessOrEqual(t, score.Score, 60)
}

func TestTrendUsesHysteresisBand(t *testing.T) {
	prior := func(priorScore int) *fvdf.DailyHealthScore {
		return &fvdf.DailyHealthScore{Score: priorScore}
	}

	// A clean day scores 100
	assert.Equal(t, fvdf.HealthTrendImproving, Score(cleanDay(), prior(91)).Trend)
	assert.Equal(t, fvdf.HealthTrendStable, Score(cleanDay(), prior(92)).Trend)
	assert.Equal(t, fvdf.HealthTrendStable, Score(cleanDay(), prior(100)).Trend)
}

func TestTrendDeclinesPastHysteresis(t *testing.T) {
	quiet := cleanDay()
	quiet.TripCount = 0
	quiet.MovingMinutes = 0

	// 30 for the zero-trip day plus 30 scaled short-usage: utilisation 40
	score := Score(quiet, &fvdf.DailyHealthScore{Score: 100})

	require.Equal(t, 88, score.Score)
	assert.Equal(t, fvdf.HealthTrendDeclining, score.Trend)
}

func TestCriticalOverridesTrendDirection(t *testing.T) {
	features := fvdf.DailyHealthFeatures{
		VehicleRef: "V1",
		Date:       healthDay,

		Completeness:     1,
		OverspeedEvents:  20,
		HarshEvents:      20,
		SpeedingExposure: 0.5,

		OfflineEvents:     10,
		LongestGapSeconds: 7 * 3600,
	}

	// Even against a worse prior day, a rock-bottom score reads critical
	score := Score(features, &fvdf.DailyHealthScore{Score: 10})

	require.Less(t, score.Score, 40)
	assert.Equal(t, fvdf.HealthTrendCritical, score.Trend)
}

func TestFlatPenaltiesApplyOnTopOfComponents(t *testing.T) {
	gappy := cleanDay()
	gappy.LongestGapSeconds = 7 * 3600

	score := Score(gappy, nil)

	// Connectivity takes the capped deduction and the flat 6-hour-gap
	// penalty lands on the overall score as well
	assert.Equal(t, 30.0, score.ConnectivityScore)
	assert.Equal(t, 66, score.Score)
}
