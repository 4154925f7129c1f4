package health

import (
	"sort"
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
)

const (
	impossibleSpeedKMH  = 400.0
	driftDistanceMetres = 100.0
	driftSpeedKMH       = 1.0
	movingSpeedKMH      = 5.0

	// Pairs further apart than this are treated as a blackout rather than a
	// long interval, and excluded from moving/idle accumulation
	gapExclusion = 30 * time.Minute

	minimumSampleInterval = 15 * time.Second
	maximumSampleInterval = 10 * time.Minute
)

// BuildFeatures aggregates one vehicle-day of samples, trips and events into
// the raw feature row health scores derive from. Samples must be ordered by
// RecordedAt. Pure - no wall clock, no storage
func BuildFeatures(vehicleRef string, date time.Time, samples []*fvdf.PositionSample, trips []*fvdf.Trip, events []*fvdf.Event, overspeedLimit float64) fvdf.DailyHealthFeatures {
	features := fvdf.DailyHealthFeatures{
		VehicleRef: vehicleRef,
		Date:       date,

		SampleCount: len(samples),
	}

	for _, trip := range trips {
		features.TripCount += 1
		features.DistanceKM += trip.Distance
	}

	for _, event := range events {
		switch event.EventType {
		case fvdf.EventTypeOverspeeding:
			features.OverspeedEvents += 1
		case fvdf.EventTypeRapidAcceleration, fvdf.EventTypeHarshBraking:
			features.HarshEvents += 1
		case fvdf.EventTypeOffline:
			features.OfflineEvents += 1
		case fvdf.EventTypeIdleTooLong:
			features.IdleEvents += 1
		case fvdf.EventTypeLowBattery, fvdf.EventTypeCriticalBattery:
			features.BatteryEvents += 1
		}
	}

	if len(samples) == 0 {
		return features
	}

	minBattery := samples[0].BatteryPercent
	var batterySum float64
	movingSamples := 0
	speedingSamples := 0

	for _, sample := range samples {
		if sample.BatteryPercent < minBattery {
			minBattery = sample.BatteryPercent
		}
		batterySum += sample.BatteryPercent

		if sample.Speed > movingSpeedKMH {
			movingSamples += 1

			if sample.Speed > overspeedLimit {
				speedingSamples += 1
			}
		}
	}

	features.MinBattery = minBattery
	features.MeanBattery = batterySum / float64(len(samples))
	features.EndBattery = samples[len(samples)-1].BatteryPercent

	if movingSamples > 0 {
		features.SpeedingExposure = float64(speedingSamples) / float64(movingSamples)
	}

	var intervals []float64
	driftSamples := 0

	for i := 1; i < len(samples); i++ {
		previous := samples[i-1]
		sample := samples[i]

		gap := sample.RecordedAt.Sub(previous.RecordedAt)
		if gap <= 0 {
			continue
		}

		intervals = append(intervals, gap.Seconds())
		if gap.Seconds() > features.LongestGapSeconds {
			features.LongestGapSeconds = gap.Seconds()
		}

		displacementMetres := previous.Location.Distance(&sample.Location)

		impliedSpeed := (displacementMetres / 1000) / gap.Hours()
		if impliedSpeed > impossibleSpeedKMH {
			features.ImpossibleJumps += 1
		}

		if sample.Speed <= driftSpeedKMH && displacementMetres > driftDistanceMetres {
			driftSamples += 1
		}

		if gap <= gapExclusion {
			if previous.Speed > movingSpeedKMH {
				features.MovingMinutes += gap.Minutes()
			} else if previous.IgnitionOn {
				features.IdleMinutes += gap.Minutes()
			}
		}
	}

	features.DriftRatio = float64(driftSamples) / float64(len(samples))

	// How many samples a full day at the observed cadence would hold. The
	// median interval is clamped so one odd day cannot skew the estimate
	// beyond sanity
	interval := clampSeconds(median(intervals), minimumSampleInterval.Seconds(), maximumSampleInterval.Seconds())
	features.ExpectedSamples = int((24 * time.Hour).Seconds() / interval)

	completeness := float64(features.SampleCount) / float64(features.ExpectedSamples)
	if completeness > 1 {
		completeness = 1
	}
	features.Completeness = completeness

	return features
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	middle := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[middle-1] + sorted[middle]) / 2
	}

	return sorted[middle]
}

func clampSeconds(value float64, low float64, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}

	return value
}
