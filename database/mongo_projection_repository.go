package database

import (
	"context"
	"fmt"

	"nfl-projections-go/logging"
	"nfl-projections-go/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProjectionsCollection holds one document per projection row.
const ProjectionsCollection = "projections"

// MongoProjectionRepository stores the combined projections table.
type MongoProjectionRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoProjectionRepository(db *MongoDB) *MongoProjectionRepository {
	collection := db.GetCollection(ProjectionsCollection)
	logger := logging.WithPrefix("mongo_projection_repo")

	ctx, cancel := WithShortTimeout()
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "player_id", Value: 1}, {Key: "season", Value: 1}, {Key: "week", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "season", Value: 1}, {Key: "week", Value: 1}}},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Errorf("Failed to create indexes on projections collection: %v", err)
	}

	return &MongoProjectionRepository{
		collection: collection,
		logger:     logger,
	}
}

// ReplaceAll swaps the stored table for rows.
func (r *MongoProjectionRepository) ReplaceAll(ctx context.Context, rows []models.ProjectionRow) error {
	ctx, cancel := WithLongTimeout(ctx)
	defer cancel()

	if _, err := r.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to clear projections: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	docs := make([]interface{}, len(rows))
	for i := range rows {
		docs[i] = rows[i]
	}
	if _, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to insert %d projections: %w", len(rows), err)
	}

	r.logger.Infof("Stored %d projection rows", len(rows))
	return nil
}

// FindAll returns every stored row ordered by season, week and player.
func (r *MongoProjectionRepository) FindAll(ctx context.Context) ([]models.ProjectionRow, error) {
	ctx, cancel := WithLongTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "season", Value: 1}, {Key: "week", Value: 1}, {Key: "player_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find projections: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []models.ProjectionRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode projections: %w", err)
	}
	return rows, nil
}

// FindBySeasonWeek returns the rows of one week.
func (r *MongoProjectionRepository) FindBySeasonWeek(ctx context.Context, season, week int) ([]models.ProjectionRow, error) {
	ctx, cancel := context.WithTimeout(ctx, MediumTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"season": season, "week": week})
	if err != nil {
		return nil, fmt.Errorf("failed to find projections for %d week %d: %w", season, week, err)
	}
	defer cursor.Close(ctx)

	var rows []models.ProjectionRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode projections: %w", err)
	}
	return rows, nil
}

// Count returns the number of stored rows.
func (r *MongoProjectionRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, ShortTimeout)
	defer cancel()
	return r.collection.CountDocuments(ctx, bson.M{})
}
