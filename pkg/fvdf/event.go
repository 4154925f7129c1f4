package fvdf

import (
	"fmt"
	"time"
)

var EventIDFormat = "EVENT:%s"

type Event struct {
	PrimaryIdentifier string `groups:"basic"`

	VehicleRef string `groups:"basic"`

	EventType EventType     `groups:"basic"`
	Severity  EventSeverity `groups:"basic"`

	Title       string `groups:"basic"`
	Description string `groups:"basic"`

	Metadata map[string]interface{} `groups:"detailed"`

	Location Location `groups:"basic"`

	ValueBefore float64 `groups:"detailed"`
	ValueAfter  float64 `groups:"detailed"`
	Threshold   float64 `groups:"detailed"`

	CreationDateTime   time.Time `groups:"basic"`
	ExpirationDateTime time.Time `groups:"detailed"`

	Acknowledged bool `groups:"basic"`

	// DebounceKey is unique-indexed so that check-then-insert of a duplicate
	// within the cooldown window fails at the storage layer instead of racing
	DebounceKey string `groups:"internal"`

	DataSource *DataSource `groups:"internal"`
}

type EventType string

const (
	EventTypeLowBattery      EventType = "low_battery"
	EventTypeCriticalBattery EventType = "critical_battery"

	EventTypeOverspeeding      EventType = "overspeeding"
	EventTypeRapidAcceleration EventType = "rapid_acceleration"
	EventTypeHarshBraking      EventType = "harsh_braking"

	EventTypeIgnitionOn  EventType = "ignition_on"
	EventTypeIgnitionOff EventType = "ignition_off"

	EventTypeVehicleMoving EventType = "vehicle_moving"
	EventTypeIdleTooLong   EventType = "idle_too_long"

	EventTypeOffline EventType = "offline"
	EventTypeOnline  EventType = "online"
)

type EventSeverity string

const (
	EventSeverityInfo     EventSeverity = "info"
	EventSeverityWarning  EventSeverity = "warning"
	EventSeverityError    EventSeverity = "error"
	EventSeverityCritical EventSeverity = "critical"
)

const DefaultEventCooldown = 5 * time.Minute

// Cooldown is the minimum spacing between two events of this type for the
// same vehicle
func (t EventType) Cooldown() time.Duration {
	if t == EventTypeVehicleMoving {
		return 10 * time.Minute
	}

	return DefaultEventCooldown
}

// Expiry is how long an event of this type stays current before it is
// considered stale by consumers
func (t EventType) Expiry() time.Duration {
	switch t {
	case EventTypeVehicleMoving:
		return 1 * time.Hour
	case EventTypeIgnitionOn, EventTypeIgnitionOff, EventTypeOnline:
		return 6 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// RetentionAge is how old an event may grow before the retention sweep is
// allowed to remove it regardless of acknowledgement
func (s EventSeverity) RetentionAge() time.Duration {
	if s == EventSeverityInfo {
		return 7 * 24 * time.Hour
	}

	return 30 * 24 * time.Hour
}

// GenerateDebounceKey buckets the event creation time by the type cooldown so
// two qualifying transitions inside one window produce an identical key
func GenerateDebounceKey(vehicleRef string, eventType EventType, createdAt time.Time) string {
	bucket := createdAt.UTC().Truncate(eventType.Cooldown()).Unix()

	return fmt.Sprintf("%s:%s:%d", vehicleRef, eventType, bucket)
}
