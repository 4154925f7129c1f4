package fvdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validSample() PositionSample {
	return PositionSample{
		VehicleRef:     "V1",
		RecordedAt:     time.Date(2024, 3, 14, 9, 2, 0, 0, time.UTC),
		Location:       NewPoint(-0.1276, 51.5072),
		Speed:          48.5,
		IgnitionOn:     true,
		BatteryPercent: 76,
		OdometerTotal:  120934.2,
		IsOnline:       true,
	}
}

func TestValidateAcceptsWellFormedSample(t *testing.T) {
	sample := validSample()

	assert.NoError(t, sample.Validate())
}

func TestValidateRejectsMalformedSamples(t *testing.T) {
	for _, testCase := range []struct {
		name   string
		mutate func(s *PositionSample)
	}{
		{"missing vehicle reference", func(s *PositionSample) { s.VehicleRef = "" }},
		{"missing recorded at", func(s *PositionSample) { s.RecordedAt = time.Time{} }},
		{"wrong coordinate count", func(s *PositionSample) { s.Location.Coordinates = []float64{0.5} }},
		{"latitude too far north", func(s *PositionSample) { s.Location = NewPoint(0, 91) }},
		{"longitude past antimeridian", func(s *PositionSample) { s.Location = NewPoint(-181, 0) }},
		{"negative speed", func(s *PositionSample) { s.Speed = -1 }},
		{"battery over full", func(s *PositionSample) { s.BatteryPercent = 101 }},
		{"negative odometer", func(s *PositionSample) { s.OdometerTotal = -0.1 }},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			sample := validSample()
			testCase.mutate(&sample)

			assert.Error(t, sample.Validate())
		})
	}
}

func TestSpeedUpperBoundIsExclusive(t *testing.T) {
	sample := validSample()

	sample.Speed = 299.9
	assert.NoError(t, sample.Validate())

	sample.Speed = 300
	assert.Error(t, sample.Validate())
}

func TestGenerateIdentifierUsesNanosecondPrecision(t *testing.T) {
	sample := validSample()

	assert.Equal(t, "SAMPLE:V1:1710406920000000000", sample.GenerateIdentifier())
}
