package fvdf

import (
	"fmt"
	"time"
)

var TripIDFormat = "TRIP:%s:%s:%d"

type Trip struct {
	PrimaryIdentifier string `groups:"basic"`

	VehicleRef string `groups:"basic"`

	StartTime time.Time `groups:"basic"`
	EndTime   time.Time `groups:"basic"`

	StartLocation Location `groups:"basic"`
	EndLocation   Location `groups:"basic"`

	Distance float64 `groups:"basic"` // km
	MaxSpeed float64 `groups:"basic"` // km/h
	AvgSpeed float64 `groups:"basic"` // km/h

	Duration float64 `groups:"basic"` // seconds

	SegmentationMethod SegmentationMethod `groups:"basic"`
	DistanceSource     DistanceSource     `groups:"detailed"`

	SampleCount int `groups:"detailed"`

	CreationDateTime     time.Time `groups:"detailed" bson:"creationdatetime,omitempty"`
	ModificationDateTime time.Time `groups:"detailed"`

	DataSource *DataSource `groups:"internal"`
}

type SegmentationMethod string

const (
	SegmentationMethodIgnition SegmentationMethod = "ignition"
	SegmentationMethodIdleGap  SegmentationMethod = "idle_gap"
)

type DistanceSource string

const (
	DistanceSourceOdometer    DistanceSource = "odometer"
	DistanceSourceGreatCircle DistanceSource = "greatcircle"
)

// GenerateIdentifier derives a stable key from the trip boundary so replaying
// segmentation over the same samples upserts rather than duplicates
func (t *Trip) GenerateIdentifier() string {
	return fmt.Sprintf(TripIDFormat, t.SegmentationMethod, t.VehicleRef, t.StartTime.UTC().Unix())
}
