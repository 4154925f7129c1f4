package fvdf

import (
	"fmt"
	"time"
)

var PositionSampleIDFormat = "SAMPLE:%s:%d"

// PositionSample is one timestamped position/status reading for a vehicle.
// Samples are immutable once written and ordered by RecordedAt per vehicle.
type PositionSample struct {
	PrimaryIdentifier string `groups:"basic"`

	VehicleRef string    `groups:"basic"`
	RecordedAt time.Time `groups:"basic"`

	Location Location `groups:"basic"`

	Speed          float64 `groups:"basic"` // km/h
	IgnitionOn     bool    `groups:"basic"`
	BatteryPercent float64 `groups:"basic"`
	OdometerTotal  float64 `groups:"basic"` // cumulative km
	IsOnline       bool    `groups:"basic"`

	DataSource *DataSource `groups:"internal"`

	CreationDateTime time.Time `groups:"detailed"`
}

func (s *PositionSample) GenerateIdentifier() string {
	return fmt.Sprintf(PositionSampleIDFormat, s.VehicleRef, s.RecordedAt.UnixNano())
}

// Validate rejects samples that are malformed or physically out of range.
// A failed sample is dropped on its own, never the whole batch.
func (s *PositionSample) Validate() error {
	if s.VehicleRef == "" {
		return fmt.Errorf("missing vehicle reference")
	}
	if s.RecordedAt.IsZero() {
		return fmt.Errorf("missing recorded at timestamp")
	}
	if len(s.Location.Coordinates) != 2 {
		return fmt.Errorf("location must contain exactly 2 coordinates")
	}

	longitude := s.Location.Coordinates[0]
	latitude := s.Location.Coordinates[1]
	if latitude < -90 || latitude > 90 {
		return fmt.Errorf("latitude %f out of range", latitude)
	}
	if longitude < -180 || longitude > 180 {
		return fmt.Errorf("longitude %f out of range", longitude)
	}

	if s.Speed < 0 || s.Speed >= 300 {
		return fmt.Errorf("speed %f out of range", s.Speed)
	}
	if s.BatteryPercent < 0 || s.BatteryPercent > 100 {
		return fmt.Errorf("battery percent %f out of range", s.BatteryPercent)
	}
	if s.OdometerTotal < 0 {
		return fmt.Errorf("odometer %f out of range", s.OdometerTotal)
	}

	return nil
}

// VehicleLastState is the explicit (vehicle -> most recent sample) record the
// detector reads its previous sample from
type VehicleLastState struct {
	VehicleRef string `groups:"basic"`

	LastSample PositionSample `groups:"basic"`

	ModificationDateTime time.Time `groups:"detailed"`
}
