package services

import (
	"context"
	"time"

	"nfl-projections-go/database"
	"nfl-projections-go/logging"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChangeStream is the part of *mongo.ChangeStream the watcher consumes.
type ChangeStream interface {
	Next(ctx context.Context) bool
	Err() error
	Close(ctx context.Context) error
}

// ProjectionChangeWatcher follows inserts into the projections collection
// and calls onChange once per burst. A table replacement inserts one
// document per row, so events are coalesced for Quiet.
type ProjectionChangeWatcher struct {
	open     func(ctx context.Context) (ChangeStream, error)
	onChange func(ctx context.Context)
	logger   *logging.Logger

	Quiet        time.Duration
	RetryBackoff time.Duration
}

// NewProjectionChangeWatcher watches the projections collection of db.
func NewProjectionChangeWatcher(db *database.MongoDB, onChange func(ctx context.Context)) *ProjectionChangeWatcher {
	collection := db.GetCollection(database.ProjectionsCollection)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"operationType": bson.M{"$in": []string{"insert", "replace"}}}}},
	}
	open := func(ctx context.Context) (ChangeStream, error) {
		return collection.Watch(ctx, pipeline, options.ChangeStream())
	}
	return newProjectionChangeWatcher(open, onChange)
}

func newProjectionChangeWatcher(open func(ctx context.Context) (ChangeStream, error), onChange func(ctx context.Context)) *ProjectionChangeWatcher {
	return &ProjectionChangeWatcher{
		open:         open,
		onChange:     onChange,
		logger:       logging.WithPrefix("ChangeStream"),
		Quiet:        2 * time.Second,
		RetryBackoff: 5 * time.Second,
	}
}

// Watch blocks until ctx is done, reconnecting after stream errors.
func (w *ProjectionChangeWatcher) Watch(ctx context.Context) {
	w.logger.Infof("Watching %s for changes", database.ProjectionsCollection)
	for ctx.Err() == nil {
		stream, err := w.open(ctx)
		if err != nil {
			w.logger.Warnf("Error creating change stream: %v", err)
		} else {
			w.consume(ctx, stream)
		}

		select {
		case <-ctx.Done():
		case <-time.After(w.RetryBackoff):
			w.logger.Debugf("Reconnecting change stream")
		}
	}
}

// consume reads stream until it ends, firing onChange after each quiet gap.
func (w *ProjectionChangeWatcher) consume(ctx context.Context, stream ChangeStream) {
	defer stream.Close(context.Background())

	events := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for stream.Next(ctx) {
			select {
			case events <- struct{}{}:
			default:
			}
		}
	}()

	var quiet <-chan time.Time
	for {
		select {
		case <-events:
			quiet = time.After(w.Quiet)
		case <-quiet:
			quiet = nil
			w.onChange(ctx)
		case <-done:
			pending := quiet != nil
			select {
			case <-events:
				pending = true
			default:
			}
			if pending && ctx.Err() == nil {
				w.onChange(ctx)
			}
			if err := stream.Err(); err != nil && ctx.Err() == nil {
				w.logger.Warnf("Change stream error: %v", err)
			}
			return
		}
	}
}
