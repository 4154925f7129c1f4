package events

import (
	"fmt"
	"time"

	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
)

const ignitionSummaryLookback = 12 * time.Hour
const idleRunLookback = 2 * time.Hour

// BuiltinRules is the ordered rule table the detector runs over every
// (previous, sample) pair. Rules are independent of each other - one
// misbehaving rule never blocks its siblings.
func BuiltinRules() []*Rule {
	return []*Rule{
		{
			Name: "critical-battery",
			Check: func(ctx *DetectionContext) *fvdf.Event {
				threshold := ctx.Thresholds.CriticalBattery

				if ctx.Sample.BatteryPercent >= threshold {
					return nil
				}
				if ctx.Previous != nil && ctx.Previous.BatteryPercent < threshold {
					return nil
				}

				event := &fvdf.Event{
					EventType:   fvdf.EventTypeCriticalBattery,
					Severity:    fvdf.EventSeverityCritical,
					Title:       "Critically low battery",
					Description: fmt.Sprintf("Battery level dropped to %.0f%%", ctx.Sample.BatteryPercent),
					ValueAfter:  ctx.Sample.BatteryPercent,
					Threshold:   threshold,
				}
				if ctx.Previous != nil {
					event.ValueBefore = ctx.Previous.BatteryPercent
				}

				return event
			},
		},
		{
			Name: "low-battery",
			Check: func(ctx *DetectionContext) *fvdf.Event {
				threshold := ctx.Thresholds.LowBattery

				if ctx.Sample.BatteryPercent >= threshold {
					return nil
				}
				if ctx.Previous != nil && ctx.Previous.BatteryPercent < threshold {
					return nil
				}

				event := &fvdf.Event{
					EventType:   fvdf.EventTypeLowBattery,
					Severity:    fvdf.EventSeverityWarning,
					Title:       "Low battery",
					Description: fmt.Sprintf("Battery level dropped to %.0f%%", ctx.Sample.BatteryPercent),
					ValueAfter:  ctx.Sample.BatteryPercent,
					Threshold:   threshold,
				}
				if ctx.Previous != nil {
					event.ValueBefore = ctx.Previous.BatteryPercent
				}

				return event
			},
		},
		{
			Name: "overspeed",
			Check: func(ctx *DetectionContext) *fvdf.Event {
				threshold := ctx.Thresholds.Overspeed

				if ctx.Sample.Speed <= threshold {
					return nil
				}
				if ctx.Previous != nil && ctx.Previous.Speed > threshold {
					return nil
				}

				severity := fvdf.EventSeverityWarning
				if ctx.Sample.Speed > threshold+20 {
					severity = fvdf.EventSeverityCritical
				} else if ctx.Sample.Speed > threshold+10 {
					severity = fvdf.EventSeverityError
				}

				event := &fvdf.Event{
					EventType:   fvdf.EventTypeOverspeeding,
					Severity:    severity,
					Title:       "Overspeeding",
					Description: fmt.Sprintf("Speed reached %.0f km/h over the %.0f km/h limit", ctx.Sample.Speed, threshold),
					ValueAfter:  ctx.Sample.Speed,
					Threshold:   threshold,
				}
				if ctx.Previous != nil {
					event.ValueBefore = ctx.Previous.Speed
				}

				return event
			},
		},
		{
			Name:             "rapid-acceleration",
			RequiresPrevious: true,
			Check: func(ctx *DetectionContext) *fvdf.Event {
				threshold := ctx.Thresholds.RapidAcceleration

				delta := ctx.Sample.Speed - ctx.Previous.Speed
				if delta <= threshold {
					return nil
				}

				return &fvdf.Event{
					EventType:   fvdf.EventTypeRapidAcceleration,
					Severity:    fvdf.EventSeverityWarning,
					Title:       "Rapid acceleration",
					Description: fmt.Sprintf("Speed jumped from %.0f to %.0f km/h between samples", ctx.Previous.Speed, ctx.Sample.Speed),
					ValueBefore: ctx.Previous.Speed,
					ValueAfter:  ctx.Sample.Speed,
					Threshold:   threshold,
				}
			},
		},
		{
			Name:             "harsh-braking",
			RequiresPrevious: true,
			Check: func(ctx *DetectionContext) *fvdf.Event {
				threshold := ctx.Thresholds.HarshBraking

				delta := ctx.Previous.Speed - ctx.Sample.Speed
				if delta <= threshold {
					return nil
				}

				return &fvdf.Event{
					EventType:   fvdf.EventTypeHarshBraking,
					Severity:    fvdf.EventSeverityWarning,
					Title:       "Harsh braking",
					Description: fmt.Sprintf("Speed fell from %.0f to %.0f km/h between samples", ctx.Previous.Speed, ctx.Sample.Speed),
					ValueBefore: ctx.Previous.Speed,
					ValueAfter:  ctx.Sample.Speed,
					Threshold:   threshold,
				}
			},
		},
		{
			Name:             "ignition-on",
			RequiresPrevious: true,
			Check: func(ctx *DetectionContext) *fvdf.Event {
				if ctx.Previous.IgnitionOn || !ctx.Sample.IgnitionOn {
					return nil
				}

				return &fvdf.Event{
					EventType:   fvdf.EventTypeIgnitionOn,
					Severity:    fvdf.EventSeverityInfo,
					Title:       "Ignition turned on",
					Description: "The vehicle ignition was turned on",
				}
			},
		},
		{
			Name:             "ignition-off",
			RequiresPrevious: true,
			Check: func(ctx *DetectionContext) *fvdf.Event {
				if !ctx.Previous.IgnitionOn || ctx.Sample.IgnitionOn {
					return nil
				}

				event := &fvdf.Event{
					EventType:   fvdf.EventTypeIgnitionOff,
					Severity:    fvdf.EventSeverityInfo,
					Title:       "Ignition turned off",
					Description: "The vehicle ignition was turned off",
				}

				if ctx.Samples != nil {
					runStart := ctx.Samples.IgnitionOnRunStart(ctx.Sample.VehicleRef, ctx.Sample.RecordedAt, ignitionSummaryLookback)
					if runStart != nil {
						metadata := map[string]interface{}{
							"runstart":        runStart.RecordedAt,
							"durationseconds": ctx.Sample.RecordedAt.Sub(runStart.RecordedAt).Seconds(),
						}

						if runStart.OdometerTotal > 0 && ctx.Sample.OdometerTotal >= runStart.OdometerTotal {
							metadata["distancekm"] = ctx.Sample.OdometerTotal - runStart.OdometerTotal
						}

						event.Metadata = metadata
					}
				}

				return event
			},
		},
		{
			Name:             "vehicle-moving",
			RequiresPrevious: true,
			Check: func(ctx *DetectionContext) *fvdf.Event {
				threshold := ctx.Thresholds.MovingSpeed

				if !ctx.Sample.IgnitionOn {
					return nil
				}
				if ctx.Previous.Speed > threshold || ctx.Sample.Speed <= threshold {
					return nil
				}

				return &fvdf.Event{
					EventType:   fvdf.EventTypeVehicleMoving,
					Severity:    fvdf.EventSeverityInfo,
					Title:       "Vehicle moving",
					Description: fmt.Sprintf("The vehicle started moving at %.0f km/h", ctx.Sample.Speed),
					ValueBefore: ctx.Previous.Speed,
					ValueAfter:  ctx.Sample.Speed,
					Threshold:   threshold,
				}
			},
		},
		{
			Name:             "idle-too-long",
			RequiresPrevious: true,
			Check: func(ctx *DetectionContext) *fvdf.Event {
				speedThreshold := ctx.Thresholds.IdleSpeed
				idleDuration := time.Duration(ctx.Thresholds.IdleMinutes) * time.Minute

				if !ctx.Sample.IgnitionOn {
					return nil
				}
				if ctx.Previous.Speed >= speedThreshold || ctx.Sample.Speed >= speedThreshold {
					return nil
				}
				if ctx.Samples == nil {
					return nil
				}

				runStart, found := ctx.Samples.IdleRunStart(ctx.Sample.VehicleRef, ctx.Sample.RecordedAt, idleRunLookback, speedThreshold)
				if !found {
					return nil
				}

				idleFor := ctx.Sample.RecordedAt.Sub(runStart)
				if idleFor <= idleDuration {
					return nil
				}

				return &fvdf.Event{
					EventType:   fvdf.EventTypeIdleTooLong,
					Severity:    fvdf.EventSeverityWarning,
					Title:       "Idling too long",
					Description: fmt.Sprintf("The vehicle has been idling with the engine running for %.0f minutes", idleFor.Minutes()),
					ValueAfter:  idleFor.Minutes(),
					Threshold:   float64(ctx.Thresholds.IdleMinutes),
					Metadata: map[string]interface{}{
						"runstart": runStart,
					},

					// One event per idle run, however long it carries on for
					DebounceKey: fmt.Sprintf("%s:%s:%d", ctx.Sample.VehicleRef, fvdf.EventTypeIdleTooLong, runStart.UTC().Unix()),
				}
			},
		},
		{
			Name:             "offline",
			RequiresPrevious: true,
			Check: func(ctx *DetectionContext) *fvdf.Event {
				if !ctx.Previous.IsOnline || ctx.Sample.IsOnline {
					return nil
				}

				return &fvdf.Event{
					EventType:   fvdf.EventTypeOffline,
					Severity:    fvdf.EventSeverityWarning,
					Title:       "Vehicle offline",
					Description: "The vehicle stopped reporting",
				}
			},
		},
		{
			Name:             "online",
			RequiresPrevious: true,
			Check: func(ctx *DetectionContext) *fvdf.Event {
				if ctx.Previous.IsOnline || !ctx.Sample.IsOnline {
					return nil
				}

				return &fvdf.Event{
					EventType:   fvdf.EventTypeOnline,
					Severity:    fvdf.EventSeverityInfo,
					Title:       "Vehicle back online",
					Description: "The vehicle resumed reporting",
				}
			},
		},
	}
}
