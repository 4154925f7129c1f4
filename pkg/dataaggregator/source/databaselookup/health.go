package databaselookup

import (
	"context"
	"errors"

	"github.com/fleetpulse/fleetpulse/pkg/dataaggregator/query"
	"github.com/fleetpulse/fleetpulse/pkg/database"
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maximumHealthHistoryDays = 90

func (s Source) DailyHealthScoreQuery(healthQuery query.DailyHealthScore) (*fvdf.DailyHealthScore, error) {
	collection := database.GetCollection("vehicle_health_days")

	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}})

	var score *fvdf.DailyHealthScore
	collection.FindOne(context.Background(), healthQuery.ToBson(), opts).Decode(&score)

	if score == nil {
		return nil, errors.New("could not find a matching Daily Health Score")
	}

	return score, nil
}

func (s Source) DailyHealthScoresQuery(historyQuery query.DailyHealthScores) ([]*fvdf.DailyHealthScore, error) {
	collection := database.GetCollection("vehicle_health_days")

	days := historyQuery.Days
	if days <= 0 || days > maximumHealthHistoryDays {
		days = maximumHealthHistoryDays
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetLimit(int64(days))

	cursor, err := collection.Find(context.Background(), historyQuery.ToBson(), opts)
	if err != nil {
		return nil, err
	}

	scores := []*fvdf.DailyHealthScore{}
	if err := cursor.All(context.Background(), &scores); err != nil {
		return nil, err
	}

	return scores, nil
}
