package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/laneflow/pkg/cache"
	"github.com/matzehuels/laneflow/pkg/errors"
	"github.com/matzehuels/laneflow/pkg/observability"
)

const runsCollection = "runs"

// MongoStore persists runs in a MongoDB collection. Intended for server
// deployments where runs must survive restarts and be visible across
// replicas.
type MongoStore struct {
	client *mongo.Client
	runs   *mongo.Collection
}

// NewMongoStore connects to MongoDB at uri and uses the given database.
// The initial ping is retried with backoff since a freshly started
// database container may not accept connections immediately.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	err = cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx, nil); err != nil {
			return cache.Retryable(err)
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &MongoStore{
		client: client,
		runs:   client.Database(database).Collection(runsCollection),
	}, nil
}

// Save persists a run, overwriting any run with the same ID.
func (s *MongoStore) Save(ctx context.Context, run *Run) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := s.runs.ReplaceOne(ctx, bson.M{"_id": run.ID}, run, opts); err != nil {
		observability.Store().OnStoreError(ctx, "save", err)
		return errors.Wrap(errors.ErrCodeStorage, err, "save run %s", run.ID)
	}
	observability.Store().OnRunSaved(ctx, run.ID)
	return nil
}

// Get retrieves a run by ID.
func (s *MongoStore) Get(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.runs.FindOne(ctx, bson.M{"_id": id}).Decode(&run)
	if err == mongo.ErrNoDocuments {
		observability.Store().OnRunFetched(ctx, id, false)
		return nil, errors.New(errors.ErrCodeRunNotFound, "run %s not found", id)
	}
	if err != nil {
		observability.Store().OnStoreError(ctx, "get", err)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load run %s", id)
	}
	observability.Store().OnRunFetched(ctx, id, true)
	return &run, nil
}

// List returns up to limit runs, newest first.
func (s *MongoStore) List(ctx context.Context, limit int) ([]*Run, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		findOpts.SetLimit(int64(limit))
	}

	cursor, err := s.runs.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		observability.Store().OnStoreError(ctx, "list", err)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list runs")
	}
	defer cursor.Close(ctx)

	var out []*Run
	if err := cursor.All(ctx, &out); err != nil {
		observability.Store().OnStoreError(ctx, "list", err)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode runs")
	}
	return out, nil
}

// Delete removes a run. Deleting a missing run is not an error.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.runs.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		observability.Store().OnStoreError(ctx, "delete", err)
		return errors.Wrap(errors.ErrCodeStorage, err, "delete run %s", id)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
