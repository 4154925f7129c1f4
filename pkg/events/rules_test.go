package events

import (
	"fmt"
	"testing"
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSampleLookup struct {
	ignitionRunStart *fvdf.PositionSample

	idleRunStart time.Time
	idleFound    bool
}

func (s stubSampleLookup) IgnitionOnRunStart(vehicleRef string, before time.Time, lookback time.Duration) *fvdf.PositionSample {
	return s.ignitionRunStart
}

func (s stubSampleLookup) IdleRunStart(vehicleRef string, before time.Time, lookback time.Duration, speedThreshold float64) (time.Time, bool) {
	return s.idleRunStart, s.idleFound
}

func testSample(vehicleRef string, recordedAt time.Time) *fvdf.PositionSample {
	return &fvdf.PositionSample{
		VehicleRef:     vehicleRef,
		RecordedAt:     recordedAt,
		Location:       fvdf.NewPoint(-1.8904, 52.4862),
		BatteryPercent: 80,
		IsOnline:       true,
	}
}

func eventsOfType(events []*fvdf.Event, eventType fvdf.EventType) []*fvdf.Event {
	var matched []*fvdf.Event

	for _, event := range events {
		if event.EventType == eventType {
			matched = append(matched, event)
		}
	}

	return matched
}

func newTestDetector(samples SampleLookup) *Detector {
	return NewDetector(&Profile{Thresholds: DefaultThresholds()}, samples, nil)
}

func TestBatteryRulesFireOncePerThresholdCrossing(t *testing.T) {
	detector := newTestDetector(nil)
	base := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)

	first := testSample("V1", base)
	first.BatteryPercent = 25

	second := testSample("V1", base.Add(time.Minute))
	second.BatteryPercent = 18

	third := testSample("V1", base.Add(2*time.Minute))
	third.BatteryPercent = 8

	firstEvents := detector.Evaluate(first, second)
	require.Len(t, eventsOfType(firstEvents, fvdf.EventTypeLowBattery), 1)
	assert.Empty(t, eventsOfType(firstEvents, fvdf.EventTypeCriticalBattery))

	lowBattery := eventsOfType(firstEvents, fvdf.EventTypeLowBattery)[0]
	assert.Equal(t, fvdf.EventSeverityWarning, lowBattery.Severity)
	assert.Equal(t, 25.0, lowBattery.ValueBefore)
	assert.Equal(t, 18.0, lowBattery.ValueAfter)
	assert.Equal(t, 20.0, lowBattery.Threshold)

	secondEvents := detector.Evaluate(second, third)
	require.Len(t, eventsOfType(secondEvents, fvdf.EventTypeCriticalBattery), 1)
	assert.Empty(t, eventsOfType(secondEvents, fvdf.EventTypeLowBattery),
		"already below the low threshold, no new crossing")

	criticalBattery := eventsOfType(secondEvents, fvdf.EventTypeCriticalBattery)[0]
	assert.Equal(t, fvdf.EventSeverityCritical, criticalBattery.Severity)
}

func TestOverspeedSeverityScalesWithExcess(t *testing.T) {
	detector := newTestDetector(nil)
	base := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)

	testCases := []struct {
		speed    float64
		severity fvdf.EventSeverity
	}{
		{105, fvdf.EventSeverityWarning},
		{115, fvdf.EventSeverityError},
		{125, fvdf.EventSeverityCritical},
	}

	for _, testCase := range testCases {
		previous := testSample("V1", base)
		previous.Speed = 98
		previous.IgnitionOn = true

		sample := testSample("V1", base.Add(30*time.Second))
		sample.Speed = testCase.speed
		sample.IgnitionOn = true

		events := eventsOfType(detector.Evaluate(previous, sample), fvdf.EventTypeOverspeeding)
		require.Len(t, events, 1, "speed %.0f", testCase.speed)
		assert.Equal(t, testCase.severity, events[0].Severity, "speed %.0f", testCase.speed)
		assert.Equal(t, 100.0, events[0].Threshold)
	}
}

func TestOverspeedOnlyFiresOnCrossing(t *testing.T) {
	detector := newTestDetector(nil)
	base := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)

	previous := testSample("V1", base)
	previous.Speed = 108
	previous.IgnitionOn = true

	sample := testSample("V1", base.Add(30*time.Second))
	sample.Speed = 112
	sample.IgnitionOn = true

	events := detector.Evaluate(previous, sample)
	assert.Empty(t, eventsOfType(events, fvdf.EventTypeOverspeeding))
}

func TestAccelerationAndBrakingDeltas(t *testing.T) {
	detector := newTestDetector(nil)
	base := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)

	previous := testSample("V1", base)
	previous.Speed = 20
	previous.IgnitionOn = true

	sample := testSample("V1", base.Add(10*time.Second))
	sample.Speed = 55
	sample.IgnitionOn = true

	events := detector.Evaluate(previous, sample)
	require.Len(t, eventsOfType(events, fvdf.EventTypeRapidAcceleration), 1)

	acceleration := eventsOfType(events, fvdf.EventTypeRapidAcceleration)[0]
	assert.Equal(t, 20.0, acceleration.ValueBefore)
	assert.Equal(t, 55.0, acceleration.ValueAfter)

	// and back down again, harder
	braking := detector.Evaluate(sample, func() *fvdf.PositionSample {
		next := testSample("V1", base.Add(20*time.Second))
		next.Speed = 5
		next.IgnitionOn = true
		return next
	}())
	require.Len(t, eventsOfType(braking, fvdf.EventTypeHarshBraking), 1)
	assert.Empty(t, eventsOfType(braking, fvdf.EventTypeRapidAcceleration))
}

func TestIgnitionEdges(t *testing.T) {
	base := time.Date(2024, 3, 14, 7, 45, 0, 0, time.UTC)

	runStart := testSample("V1", base.Add(-42*time.Minute))
	runStart.IgnitionOn = true
	runStart.OdometerTotal = 1200.0

	detector := newTestDetector(stubSampleLookup{ignitionRunStart: runStart})

	off := testSample("V1", base)
	off.IgnitionOn = false

	on := testSample("V1", base.Add(time.Minute))
	on.IgnitionOn = true

	onEvents := detector.Evaluate(off, on)
	require.Len(t, eventsOfType(onEvents, fvdf.EventTypeIgnitionOn), 1)
	assert.Empty(t, eventsOfType(onEvents, fvdf.EventTypeIgnitionOff))

	offAgain := testSample("V1", base.Add(30*time.Minute))
	offAgain.IgnitionOn = false
	offAgain.OdometerTotal = 1215.5

	offEvents := eventsOfType(detector.Evaluate(on, offAgain), fvdf.EventTypeIgnitionOff)
	require.Len(t, offEvents, 1)

	metadata := offEvents[0].Metadata
	require.NotNil(t, metadata)
	assert.InDelta(t, 15.5, metadata["distancekm"], 0.001)
	assert.Equal(t, offAgain.RecordedAt.Sub(runStart.RecordedAt).Seconds(), metadata["durationseconds"])
}

func TestVehicleMovingRequiresIgnition(t *testing.T) {
	detector := newTestDetector(nil)
	base := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)

	previous := testSample("V1", base)
	previous.Speed = 0

	sample := testSample("V1", base.Add(30*time.Second))
	sample.Speed = 22

	// Towed, not driven
	assert.Empty(t, eventsOfType(detector.Evaluate(previous, sample), fvdf.EventTypeVehicleMoving))

	previous.IgnitionOn = true
	sample.IgnitionOn = true
	assert.Len(t, eventsOfType(detector.Evaluate(previous, sample), fvdf.EventTypeVehicleMoving), 1)
}

func TestIdleTooLongKeyedToRunStart(t *testing.T) {
	base := time.Date(2024, 3, 14, 11, 0, 0, 0, time.UTC)
	runStart := base.Add(-45 * time.Minute)

	detector := newTestDetector(stubSampleLookup{idleRunStart: runStart, idleFound: true})

	previous := testSample("V1", base.Add(-time.Minute))
	previous.IgnitionOn = true
	previous.Speed = 0

	sample := testSample("V1", base)
	sample.IgnitionOn = true
	sample.Speed = 0

	events := eventsOfType(detector.Evaluate(previous, sample), fvdf.EventTypeIdleTooLong)
	require.Len(t, events, 1)

	expectedKey := fmt.Sprintf("V1:%s:%d", fvdf.EventTypeIdleTooLong, runStart.Unix())
	assert.Equal(t, expectedKey, events[0].DebounceKey)

	// A later sample in the same run produces the same key, so the second
	// insert is rejected by the unique index
	later := testSample("V1", base.Add(5*time.Minute))
	later.IgnitionOn = true
	later.Speed = 0

	laterEvents := eventsOfType(detector.Evaluate(sample, later), fvdf.EventTypeIdleTooLong)
	require.Len(t, laterEvents, 1)
	assert.Equal(t, expectedKey, laterEvents[0].DebounceKey)
}

func TestIdleTooLongBelowDurationIsQuiet(t *testing.T) {
	base := time.Date(2024, 3, 14, 11, 0, 0, 0, time.UTC)

	detector := newTestDetector(stubSampleLookup{idleRunStart: base.Add(-10 * time.Minute), idleFound: true})

	previous := testSample("V1", base.Add(-time.Minute))
	previous.IgnitionOn = true
	previous.Speed = 0

	sample := testSample("V1", base)
	sample.IgnitionOn = true
	sample.Speed = 0

	assert.Empty(t, eventsOfType(detector.Evaluate(previous, sample), fvdf.EventTypeIdleTooLong))
}

func TestOnlineOfflineFlips(t *testing.T) {
	detector := newTestDetector(nil)
	base := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)

	online := testSample("V1", base)
	offline := testSample("V1", base.Add(10*time.Minute))
	offline.IsOnline = false

	offlineEvents := detector.Evaluate(online, offline)
	require.Len(t, eventsOfType(offlineEvents, fvdf.EventTypeOffline), 1)
	assert.Equal(t, fvdf.EventSeverityWarning, eventsOfType(offlineEvents, fvdf.EventTypeOffline)[0].Severity)

	recovered := testSample("V1", base.Add(20*time.Minute))
	onlineEvents := detector.Evaluate(offline, recovered)
	require.Len(t, eventsOfType(onlineEvents, fvdf.EventTypeOnline), 1)
}

func TestFirstSampleOnlyRunsAbsoluteRules(t *testing.T) {
	detector := newTestDetector(nil)
	base := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)

	sample := testSample("V1", base)
	sample.Speed = 130
	sample.IgnitionOn = true
	sample.BatteryPercent = 8

	events := detector.Evaluate(nil, sample)

	assert.Len(t, eventsOfType(events, fvdf.EventTypeOverspeeding), 1)
	assert.Len(t, eventsOfType(events, fvdf.EventTypeLowBattery), 1)
	assert.Len(t, eventsOfType(events, fvdf.EventTypeCriticalBattery), 1)

	assert.Empty(t, eventsOfType(events, fvdf.EventTypeVehicleMoving))
	assert.Empty(t, eventsOfType(events, fvdf.EventTypeIgnitionOn))
	assert.Empty(t, eventsOfType(events, fvdf.EventTypeRapidAcceleration))
}
