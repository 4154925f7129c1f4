package fvdf

import (
	"fmt"
	"time"
)

var VehicleHealthIDFormat = "HEALTH:%s:%s"

const HealthDateFormat = "2006-01-02"

// DailyHealthFeatures are the raw per-day aggregates a health score is
// computed from
type DailyHealthFeatures struct {
	VehicleRef string    `groups:"internal"`
	Date       time.Time `groups:"internal"`

	SampleCount       int     `groups:"internal"`
	ExpectedSamples   int     `groups:"internal"`
	Completeness      float64 `groups:"internal"` // observed over expected, 0 - 1
	LongestGapSeconds float64 `groups:"internal"`
	ImpossibleJumps   int     `groups:"internal"` // implied speed above 400 km/h between fixes
	DriftRatio        float64 `groups:"internal"` // stationary fixes that still moved, over total

	TripCount     int     `groups:"internal"`
	DistanceKM    float64 `groups:"internal"`
	MovingMinutes float64 `groups:"internal"`
	IdleMinutes   float64 `groups:"internal"`
	IdleEvents    int     `groups:"internal"`

	OverspeedEvents  int     `groups:"internal"`
	HarshEvents      int     `groups:"internal"` // rapid acceleration + harsh braking
	OfflineEvents    int     `groups:"internal"`
	SpeedingExposure float64 `groups:"internal"` // share of moving fixes above the overspeed limit

	MinBattery    float64 `groups:"internal"`
	MeanBattery   float64 `groups:"internal"`
	EndBattery    float64 `groups:"internal"`
	BatteryEvents int     `groups:"internal"` // low + critical battery events
}

// DailyHealthScore is the published per-vehicle per-day score with its
// component breakdown
type DailyHealthScore struct {
	PrimaryIdentifier string `groups:"basic"`

	VehicleRef string    `groups:"basic"`
	Date       time.Time `groups:"basic"`

	Score int `groups:"basic"` // 0 - 100

	ConnectivityScore float64 `groups:"detailed"`
	SafetyScore       float64 `groups:"detailed"`
	UtilisationScore  float64 `groups:"detailed"`
	DataQualityScore  float64 `groups:"detailed"`

	// Confidence reflects how much data backed the score, 0 - 100
	Confidence float64 `groups:"basic"`

	Trend HealthTrend `groups:"basic"`

	Features DailyHealthFeatures `groups:"internal"`

	CreationDateTime     time.Time `groups:"detailed" bson:"creationdatetime,omitempty"`
	ModificationDateTime time.Time `groups:"detailed"`
}

type HealthTrend string

const (
	HealthTrendImproving HealthTrend = "improving"
	HealthTrendStable    HealthTrend = "stable"
	HealthTrendDeclining HealthTrend = "declining"
	HealthTrendCritical  HealthTrend = "critical"
)

func (h *DailyHealthScore) GenerateIdentifier() {
	h.PrimaryIdentifier = fmt.Sprintf(VehicleHealthIDFormat, h.VehicleRef, h.Date.UTC().Format(HealthDateFormat))
}
