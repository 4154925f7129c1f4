package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes() {
	createTelemetryIndexes()
	createEventsIndexes()
	createTripsIndexes()
	createDerivedIndexes()
}

func createTelemetryIndexes() {
	// PositionSamples
	// Unique (vehicleref, recordedat) makes redelivered samples a no-op
	samplesCollection := GetCollection("position_samples")
	_, err := samplesCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "vehicleref", Value: 1},
				{Key: "recordedat", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "recordedat", Value: 1}},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}

	// VehicleLastState
	lastStateCollection := GetCollection("vehicle_last_state")
	_, err = lastStateCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "vehicleref", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createEventsIndexes() {
	// Events
	// Unique debouncekey keeps check-then-insert atomic across consumers
	eventsCollection := GetCollection("events")
	_, err := eventsCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "debouncekey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "vehicleref", Value: 1},
				{Key: "creationdatetime", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "eventtype", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "creationdatetime", Value: 1}},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createTripsIndexes() {
	// Trips
	tripsCollection := GetCollection("trips")
	_, err := tripsCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "vehicleref", Value: 1},
				{Key: "segmentationmethod", Value: 1},
				{Key: "starttime", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "endtime", Value: 1}},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}

func createDerivedIndexes() {
	// LearnedLocations
	locationsCollection := GetCollection("learned_locations")
	_, err := locationsCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "vehicleref", Value: 1},
				{Key: "visitcount", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "centroid", Value: "2dsphere"}},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}

	// LocationVisits
	// Unique identifier is the exactly-once guard for dwell merging
	visitsCollection := GetCollection("location_visits")
	_, err = visitsCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "primaryidentifier", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "vehicleref", Value: 1},
				{Key: "arrival", Value: -1},
			},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}

	// VehicleHealthDays
	healthCollection := GetCollection("vehicle_health_days")
	_, err = healthCollection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "primaryidentifier", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "vehicleref", Value: 1},
				{Key: "date", Value: -1},
			},
		},
	}, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
