package health

import (
	"testing"
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/stretchr/testify/assert"
)

var healthDay = time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)

func healthSample(at time.Time, speed float64, battery float64, ignitionOn bool) *fvdf.PositionSample {
	return &fvdf.PositionSample{
		VehicleRef: "V1",
		RecordedAt: at,

		Location: fvdf.NewPoint(-1.8904, 52.4862),

		Speed:          speed,
		BatteryPercent: battery,
		IgnitionOn:     ignitionOn,
		IsOnline:       true,
	}
}

func TestBuildFeaturesCountsTripsAndEvents(t *testing.T) {
	trips := []*fvdf.Trip{
		{Distance: 12.5},
		{Distance: 7.5},
	}

	events := []*fvdf.Event{
		{EventType: fvdf.EventTypeOverspeeding},
		{EventType: fvdf.EventTypeOverspeeding},
		{EventType: fvdf.EventTypeRapidAcceleration},
		{EventType: fvdf.EventTypeHarshBraking},
		{EventType: fvdf.EventTypeOffline},
		{EventType: fvdf.EventTypeIdleTooLong},
		{EventType: fvdf.EventTypeLowBattery},
		{EventType: fvdf.EventTypeCriticalBattery},
		{EventType: fvdf.EventTypeIgnitionOn}, // not a health signal
	}

	features := BuildFeatures("V1", healthDay, nil, trips, events, 100)

	assert.Equal(t, 2, features.TripCount)
	assert.Equal(t, 20.0, features.DistanceKM)
	assert.Equal(t, 2, features.OverspeedEvents)
	assert.Equal(t, 2, features.HarshEvents)
	assert.Equal(t, 1, features.OfflineEvents)
	assert.Equal(t, 1, features.IdleEvents)
	assert.Equal(t, 2, features.BatteryEvents)

	assert.Equal(t, 0, features.SampleCount)
	assert.Equal(t, 0.0, features.Completeness)
}

func TestBuildFeaturesBatteryStatistics(t *testing.T) {
	at := func(minutes int) time.Time { return healthDay.Add(time.Duration(minutes) * time.Minute) }

	samples := []*fvdf.PositionSample{
		healthSample(at(0), 0, 80, false),
		healthSample(at(1), 0, 75, false),
		healthSample(at(2), 0, 60, false),
		healthSample(at(3), 0, 72, false),
	}

	features := BuildFeatures("V1", healthDay, samples, nil, nil, 100)

	assert.Equal(t, 60.0, features.MinBattery)
	assert.InDelta(t, 71.75, features.MeanBattery, 0.0001)
	assert.Equal(t, 72.0, features.EndBattery)
}

func TestBuildFeaturesFlagsImpossibleJump(t *testing.T) {
	first := healthSample(healthDay.Add(10*time.Hour), 50, 70, true)

	// 20 km away one minute later, an implied 1200 km/h
	teleported := healthSample(healthDay.Add(10*time.Hour+time.Minute), 50, 70, true)
	teleported.Location = fvdf.NewPoint(-1.8904, 52.6662)

	features := BuildFeatures("V1", healthDay, []*fvdf.PositionSample{first, teleported}, nil, nil, 100)

	assert.Equal(t, 1, features.ImpossibleJumps)
	assert.Equal(t, 60.0, features.LongestGapSeconds)
}

func TestBuildFeaturesDriftRatio(t *testing.T) {
	at := func(minutes int) time.Time { return healthDay.Add(time.Duration(minutes) * time.Minute) }

	parked := []*fvdf.PositionSample{
		healthSample(at(0), 0, 70, false),
		healthSample(at(5), 0, 70, false),
		healthSample(at(10), 0, 70, false),
		healthSample(at(15), 0, 70, false),
	}

	// One fix wanders 220 metres while the vehicle sits still
	parked[2].Location = fvdf.NewPoint(-1.8904, 52.4882)
	parked[3].Location = fvdf.NewPoint(-1.8904, 52.4882)

	features := BuildFeatures("V1", healthDay, parked, nil, nil, 100)

	assert.Equal(t, 0.25, features.DriftRatio)
	assert.Equal(t, 0, features.ImpossibleJumps)
}

func TestBuildFeaturesCompleteness(t *testing.T) {
	var samples []*fvdf.PositionSample
	for i := 0; i < 100; i++ {
		samples = append(samples, healthSample(healthDay.Add(time.Duration(i)*time.Minute), 0, 70, false))
	}

	features := BuildFeatures("V1", healthDay, samples, nil, nil, 100)

	assert.Equal(t, 1440, features.ExpectedSamples)
	assert.InDelta(t, 100.0/1440.0, features.Completeness, 0.0001)
}

func TestBuildFeaturesClampsExpectedInterval(t *testing.T) {
	var samples []*fvdf.PositionSample
	for i := 0; i < 5; i++ {
		samples = append(samples, healthSample(healthDay.Add(time.Duration(i)*2*time.Second), 0, 70, false))
	}

	features := BuildFeatures("V1", healthDay, samples, nil, nil, 100)

	// A 2 second cadence is clamped to the 15 second floor
	assert.Equal(t, 5760, features.ExpectedSamples)
}

func TestBuildFeaturesMovingAndIdleMinutes(t *testing.T) {
	at := func(minutes int) time.Time { return healthDay.Add(time.Duration(minutes) * time.Minute) }

	samples := []*fvdf.PositionSample{
		healthSample(at(0), 30, 70, true),
		healthSample(at(2), 40, 70, true),
		healthSample(at(4), 0, 70, true),
		healthSample(at(6), 0, 70, true),
		healthSample(at(8), 0, 70, false),
		healthSample(at(10), 0, 70, false),
	}

	features := BuildFeatures("V1", healthDay, samples, nil, nil, 100)

	assert.InDelta(t, 4.0, features.MovingMinutes, 0.0001)
	assert.InDelta(t, 4.0, features.IdleMinutes, 0.0001)
}

func TestBuildFeaturesSpeedingExposure(t *testing.T) {
	at := func(minutes int) time.Time { return healthDay.Add(time.Duration(minutes) * time.Minute) }

	samples := []*fvdf.PositionSample{
		healthSample(at(0), 50, 70, true),
		healthSample(at(1), 120, 70, true),
		healthSample(at(2), 110, 70, true),
		healthSample(at(3), 0, 70, true),
	}

	features := BuildFeatures("V1", healthDay, samples, nil, nil, 100)

	assert.InDelta(t, 2.0/3.0, features.SpeedingExposure, 0.0001)
}
