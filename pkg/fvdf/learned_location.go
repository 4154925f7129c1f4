package fvdf

import "time"

var LearnedLocationIDFormat = "LOCATION:%s"

// LearnedLocation is a spatial cluster of repeated dwell points for one
// vehicle with a classified purpose
type LearnedLocation struct {
	PrimaryIdentifier string `groups:"basic"`

	VehicleRef string `groups:"basic"`

	Centroid     Location `groups:"basic"`
	RadiusMetres float64  `groups:"basic"`

	VisitCount    int     `groups:"basic"`
	TotalDuration float64 `groups:"basic"` // seconds across all visits

	FirstVisit time.Time `groups:"basic"`
	LastVisit  time.Time `groups:"basic"`

	LocationType LocationType `groups:"basic"`
	Confidence   float64      `groups:"basic"` // 0..1

	VisitPattern VisitPattern `groups:"detailed"`

	CreationDateTime     time.Time `groups:"detailed" bson:"creationdatetime,omitempty"`
	ModificationDateTime time.Time `groups:"detailed"`
}

type LocationType string

const (
	LocationTypeHome     LocationType = "home"
	LocationTypeWork     LocationType = "work"
	LocationTypeParking  LocationType = "parking"
	LocationTypeFrequent LocationType = "frequent"
	LocationTypeUnknown  LocationType = "unknown"
)

// VisitPattern counts arrivals per time-of-day bucket, used to refine
// classification (eg. a strong morning and evening pattern marks an errand
// location rather than home)
type VisitPattern struct {
	Morning   int `groups:"detailed"` // 05:00 - 11:00
	Afternoon int `groups:"detailed"` // 11:00 - 17:00
	Evening   int `groups:"detailed"` // 17:00 - 22:00
	Night     int `groups:"detailed"` // 22:00 - 05:00
}

func (p *VisitPattern) Record(arrival time.Time) {
	hour := arrival.Hour()

	switch {
	case hour >= 5 && hour < 11:
		p.Morning += 1
	case hour >= 11 && hour < 17:
		p.Afternoon += 1
	case hour >= 17 && hour < 22:
		p.Evening += 1
	default:
		p.Night += 1
	}
}

func (p *VisitPattern) Total() int {
	return p.Morning + p.Afternoon + p.Evening + p.Night
}

// MeanDwellSeconds is the average time spent per visit
func (l *LearnedLocation) MeanDwellSeconds() float64 {
	if l.VisitCount == 0 {
		return 0
	}

	return l.TotalDuration / float64(l.VisitCount)
}
