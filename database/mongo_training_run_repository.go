package database

import (
	"context"
	"errors"
	"fmt"

	"nfl-projections-go/logging"
	"nfl-projections-go/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTrainingRunRepository keeps a copy of every fitted model.
type MongoTrainingRunRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoTrainingRunRepository(db *MongoDB) *MongoTrainingRunRepository {
	collection := db.GetCollection("training_runs")
	logger := logging.WithPrefix("mongo_training_run_repo")

	ctx, cancel := WithShortTimeout()
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "run_id", Value: 1}, {Key: "target", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Errorf("Failed to create index on training_runs collection: %v", err)
	}

	return &MongoTrainingRunRepository{
		collection: collection,
		logger:     logger,
	}
}

// Insert stores one run.
func (r *MongoTrainingRunRepository) Insert(ctx context.Context, run models.TrainingRun) error {
	ctx, cancel := context.WithTimeout(ctx, ShortTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, run); err != nil {
		return fmt.Errorf("failed to insert training run %s/%s: %w", run.RunID, run.Target, err)
	}
	r.logger.Debugf("Stored training run %s for %s", run.RunID, run.Target)
	return nil
}

// Latest returns the most recent run for target, or nil when none exists.
func (r *MongoTrainingRunRepository) Latest(ctx context.Context, target string) (*models.TrainingRun, error) {
	ctx, cancel := context.WithTimeout(ctx, ShortTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var run models.TrainingRun
	err := r.collection.FindOne(ctx, bson.M{"target": target}, opts).Decode(&run)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find training run for %s: %w", target, err)
	}
	return &run, nil
}
