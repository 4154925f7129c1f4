package trips

import (
	"testing"
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIgnitionRunBetweenEdges(t *testing.T) {
	at := func(minutes int) time.Time { return segmentStart.Add(time.Duration(minutes) * time.Minute) }

	samples := []*fvdf.PositionSample{
		drivePoint("V1", at(0), 0, false, 1000),
		drivePoint("V1", at(1), 0, true, 1000),
		drivePoint("V1", at(2), 30, true, 1000.5),
		drivePoint("V1", at(3), 50, true, 1001.3),
		drivePoint("V1", at(4), 0, false, 1001.5),
	}

	trips := IgnitionStrategy{}.Segment(samples)
	require.Len(t, trips, 1)

	trip := trips[0]
	assert.Equal(t, at(1), trip.StartTime)
	assert.Equal(t, at(4), trip.EndTime)
	assert.Equal(t, 4, trip.SampleCount)
	assert.Equal(t, 50.0, trip.MaxSpeed)
	assert.InDelta(t, 1.5, trip.Distance, 0.0001)
	assert.Equal(t, fvdf.SegmentationMethodIgnition, trip.SegmentationMethod)
}

func TestIgnitionFirstSampleOpensRun(t *testing.T) {
	at := func(minutes int) time.Time { return segmentStart.Add(time.Duration(minutes) * time.Minute) }

	// Sweep window starts mid-drive, there is no off-to-on edge to see
	samples := []*fvdf.PositionSample{
		drivePoint("V1", at(0), 45, true, 1000),
		drivePoint("V1", at(1), 50, true, 1000.8),
		drivePoint("V1", at(2), 0, false, 1001),
	}

	trips := IgnitionStrategy{}.Segment(samples)
	require.Len(t, trips, 1)

	assert.Equal(t, at(0), trips[0].StartTime)
	assert.Equal(t, at(2), trips[0].EndTime)
}

func TestIgnitionSplitsOnReportingGap(t *testing.T) {
	at := func(minutes int) time.Time { return segmentStart.Add(time.Duration(minutes) * time.Minute) }

	samples := []*fvdf.PositionSample{
		drivePoint("V1", at(0), 10, true, 1000),
		drivePoint("V1", at(1), 50, true, 1000.8),
		// 5 minute blackout with the ignition still on
		drivePoint("V1", at(6), 40, true, 1004),
		drivePoint("V1", at(7), 30, true, 1004.5),
		drivePoint("V1", at(8), 0, false, 1004.7),
	}

	trips := IgnitionStrategy{}.Segment(samples)
	require.Len(t, trips, 2)

	assert.Equal(t, at(0), trips[0].StartTime)
	assert.Equal(t, at(1), trips[0].EndTime)

	assert.Equal(t, at(6), trips[1].StartTime)
	assert.Equal(t, at(8), trips[1].EndTime)

	assert.NotEqual(t, trips[0].PrimaryIdentifier, trips[1].PrimaryIdentifier)
}

func TestIgnitionOpenRunIsNotEmitted(t *testing.T) {
	at := func(minutes int) time.Time { return segmentStart.Add(time.Duration(minutes) * time.Minute) }

	samples := []*fvdf.PositionSample{
		drivePoint("V1", at(0), 0, true, 1000),
		drivePoint("V1", at(1), 40, true, 1000.7),
		drivePoint("V1", at(2), 55, true, 1001.6),
	}

	assert.Empty(t, IgnitionStrategy{}.Segment(samples))
}

func TestIgnitionIgnoresParkedVehicle(t *testing.T) {
	at := func(minutes int) time.Time { return segmentStart.Add(time.Duration(minutes) * time.Minute) }

	samples := []*fvdf.PositionSample{
		drivePoint("V1", at(0), 0, false, 1000),
		drivePoint("V1", at(5), 0, false, 1000),
		drivePoint("V1", at(10), 0, false, 1000),
	}

	assert.Empty(t, IgnitionStrategy{}.Segment(samples))
}
