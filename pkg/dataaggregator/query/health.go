package query

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// DailyHealthScore finds a single day's score, or the most recent one when
// Date is left zero
type DailyHealthScore struct {
	VehicleRef string
	Date       time.Time
}

func (h *DailyHealthScore) ToBson() bson.M {
	filter := bson.M{"vehicleref": h.VehicleRef}

	if !h.Date.IsZero() {
		filter["date"] = h.Date
	}

	return filter
}

type DailyHealthScores struct {
	VehicleRef string
	Days       int
}

func (h *DailyHealthScores) ToBson() bson.M {
	return bson.M{"vehicleref": h.VehicleRef}
}
