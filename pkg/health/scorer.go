package health

import (
	"math"
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
)

const (
	connectivityDeductionCap = 70.0
	safetyDeductionCap       = 70.0
	utilisationDeductionCap  = 60.0
	dataQualityDeductionCap  = 70.0

	offlineEventPenalty = 8.0
	gapAllowanceMinutes = 30.0
	gapPenaltyPerMinute = 0.5

	overspeedEventPenalty = 6.0
	harshEventPenalty     = 4.0
	exposurePenalty       = 40.0

	zeroTripPenalty     = 30.0
	shortUsageMinutes   = 60.0
	shortUsagePerMinute = 0.5

	completenessShortfallPenalty = 50.0
	driftRatioPenalty            = 30.0
	impossibleJumpPenalty        = 5.0

	confidenceJumpPenalty  = 5.0
	confidenceDriftPenalty = 30.0

	trendHysteresis = 8
)

// Score turns a day's features into the published health score. prior is the
// most recent earlier day's score, nil when this is the vehicle's first
func Score(features fvdf.DailyHealthFeatures, prior *fvdf.DailyHealthScore) *fvdf.DailyHealthScore {
	connectivity := 100 - math.Min(connectivityDeductionCap,
		float64(features.OfflineEvents)*offlineEventPenalty+
			math.Max(0, features.LongestGapSeconds/60-gapAllowanceMinutes)*gapPenaltyPerMinute)

	safety := 100 - math.Min(safetyDeductionCap,
		float64(features.OverspeedEvents)*overspeedEventPenalty+
			float64(features.HarshEvents)*harshEventPenalty+
			features.SpeedingExposure*exposurePenalty)

	utilisationDeduction := 0.0
	if features.TripCount == 0 {
		utilisationDeduction += zeroTripPenalty
	}
	if features.MovingMinutes < shortUsageMinutes {
		utilisationDeduction += (shortUsageMinutes - features.MovingMinutes) * shortUsagePerMinute
	}
	utilisation := 100 - math.Min(utilisationDeductionCap, utilisationDeduction)

	dataQuality := 100 - math.Min(dataQualityDeductionCap,
		(1-features.Completeness)*completenessShortfallPenalty+
			features.DriftRatio*driftRatioPenalty+
			float64(features.ImpossibleJumps)*impossibleJumpPenalty)

	overall := 0.35*connectivity + 0.30*safety + 0.20*utilisation + 0.15*dataQuality

	// Flat penalties for severe single-day anomalies
	if features.LongestGapSeconds > (6 * time.Hour).Seconds() {
		overall -= 10
	}
	if features.ImpossibleJumps >= 3 {
		overall -= 8
	}
	if features.SpeedingExposure > 0.2 {
		overall -= 7
	}

	confidence := clamp(features.Completeness*100-
		float64(features.ImpossibleJumps)*confidenceJumpPenalty-
		features.DriftRatio*confidenceDriftPenalty, 0, 100)

	// A thin or noisy day is never allowed to look perfect
	if confidence < 35 {
		overall = math.Min(overall, 75)
	}
	if confidence < 20 {
		overall = math.Min(overall, 60)
	}

	score := &fvdf.DailyHealthScore{
		VehicleRef: features.VehicleRef,
		Date:       features.Date,

		Score: int(math.Round(clamp(overall, 0, 100))),

		ConnectivityScore: connectivity,
		SafetyScore:       safety,
		UtilisationScore:  utilisation,
		DataQualityScore:  dataQuality,

		Confidence: confidence,

		Features: features,
	}
	score.GenerateIdentifier()
	score.Trend = trend(score.Score, prior)

	return score
}

func trend(score int, prior *fvdf.DailyHealthScore) fvdf.HealthTrend {
	if score < 40 {
		return fvdf.HealthTrendCritical
	}
	if prior == nil {
		return fvdf.HealthTrendStable
	}

	difference := score - prior.Score
	switch {
	case difference > trendHysteresis:
		return fvdf.HealthTrendImproving
	case difference < -trendHysteresis:
		return fvdf.HealthTrendDeclining
	}

	return fvdf.HealthTrendStable
}

func clamp(value float64, low float64, high float64) float64 {
	return math.Max(low, math.Min(high, value))
}
