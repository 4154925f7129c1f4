package fvdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebounceKeySharedWithinCooldownWindow(t *testing.T) {
	early := time.Date(2024, 3, 14, 9, 2, 10, 0, time.UTC)
	late := time.Date(2024, 3, 14, 9, 4, 50, 0, time.UTC)
	nextWindow := time.Date(2024, 3, 14, 9, 5, 1, 0, time.UTC)

	assert.Equal(t,
		GenerateDebounceKey("V1", EventTypeOverspeeding, early),
		GenerateDebounceKey("V1", EventTypeOverspeeding, late))

	assert.NotEqual(t,
		GenerateDebounceKey("V1", EventTypeOverspeeding, early),
		GenerateDebounceKey("V1", EventTypeOverspeeding, nextWindow))
}

func TestDebounceKeyIsPerVehiclePerType(t *testing.T) {
	at := time.Date(2024, 3, 14, 9, 2, 0, 0, time.UTC)

	assert.NotEqual(t,
		GenerateDebounceKey("V1", EventTypeOverspeeding, at),
		GenerateDebounceKey("V2", EventTypeOverspeeding, at))

	assert.NotEqual(t,
		GenerateDebounceKey("V1", EventTypeOverspeeding, at),
		GenerateDebounceKey("V1", EventTypeHarshBraking, at))
}

func TestVehicleMovingCooldownIsLonger(t *testing.T) {
	assert.Equal(t, 10*time.Minute, EventTypeVehicleMoving.Cooldown())
	assert.Equal(t, DefaultEventCooldown, EventTypeLowBattery.Cooldown())

	// 09:02 and 09:09 share the ten minute bucket
	early := time.Date(2024, 3, 14, 9, 2, 0, 0, time.UTC)
	late := time.Date(2024, 3, 14, 9, 9, 0, 0, time.UTC)
	nextWindow := time.Date(2024, 3, 14, 9, 11, 0, 0, time.UTC)

	assert.Equal(t,
		GenerateDebounceKey("V1", EventTypeVehicleMoving, early),
		GenerateDebounceKey("V1", EventTypeVehicleMoving, late))

	assert.NotEqual(t,
		GenerateDebounceKey("V1", EventTypeVehicleMoving, early),
		GenerateDebounceKey("V1", EventTypeVehicleMoving, nextWindow))
}

func TestEventExpiryByType(t *testing.T) {
	assert.Equal(t, 1*time.Hour, EventTypeVehicleMoving.Expiry())
	assert.Equal(t, 6*time.Hour, EventTypeIgnitionOn.Expiry())
	assert.Equal(t, 24*time.Hour, EventTypeCriticalBattery.Expiry())
}

func TestRetentionAgeBySeverity(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, EventSeverityInfo.RetentionAge())
	assert.Equal(t, 30*24*time.Hour, EventSeverityWarning.RetentionAge())
	assert.Equal(t, 30*24*time.Hour, EventSeverityCritical.RetentionAge())
}
