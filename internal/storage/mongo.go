package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qepting91/corpus-pipeline/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoData struct {
	ID        string    `bson:"_id"`
	PostID    string    `bson:"post_id"`
	SourceID  string    `bson:"source_id"`
	TaskID    string    `bson:"task_id"`
	PostBlob  string    `bson:"post_blob"`
	CreatedAt time.Time `bson:"created_at"`
}

type mongoError struct {
	ID        string    `bson:"_id"`
	SourceID  string    `bson:"source_id"`
	TaskID    string    `bson:"task_id"`
	Message   string    `bson:"message"`
	CreatedAt time.Time `bson:"created_at"`
}

// MongoStore keeps scrape results in two collections.
type MongoStore struct {
	client *mongo.Client
	data   *mongo.Collection
	errors *mongo.Collection
}

func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("can't ping MongoDB: %w", err)
	}

	db := client.Database(database)
	return &MongoStore{
		client: client,
		data:   db.Collection("scraper_data"),
		errors: db.Collection("scraper_errors"),
	}, nil
}

func (m *MongoStore) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	byTask := mongo.IndexModel{Keys: bson.D{{Key: "task_id", Value: 1}}}
	if _, err := m.data.Indexes().CreateOne(ctx, byTask); err != nil {
		return fmt.Errorf("can't create scraper_data index: %w", err)
	}
	if _, err := m.errors.Indexes().CreateOne(ctx, byTask); err != nil {
		return fmt.Errorf("can't create scraper_errors index: %w", err)
	}
	return nil
}

func (m *MongoStore) PersistSuccessRows(ctx context.Context, rows []domain.ScraperRecord) error {
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, len(rows))
	for i, r := range rows {
		docs[i] = mongoData{
			ID:        uuid.NewString(),
			PostID:    r.PostID,
			SourceID:  r.SourceID,
			TaskID:    r.TaskID,
			PostBlob:  r.PostBlob,
			CreatedAt: now,
		}
	}
	_, err := m.data.InsertMany(ctx, docs)
	return err
}

func (m *MongoStore) PersistError(ctx context.Context, row domain.ScraperErrorRecord) error {
	_, err := m.errors.InsertOne(ctx, mongoError{
		ID:        uuid.NewString(),
		SourceID:  row.SourceID,
		TaskID:    row.TaskID,
		Message:   row.Message,
		CreatedAt: time.Now().UTC(),
	})
	return err
}

func (m *MongoStore) Stats(ctx context.Context) ([]domain.TaskStat, error) {
	rows, err := countByTask(ctx, m.data)
	if err != nil {
		return nil, err
	}
	errs, err := countByTask(ctx, m.errors)
	if err != nil {
		return nil, err
	}
	return mergeStats(rows, errs), nil
}

func countByTask(ctx context.Context, coll *mongo.Collection) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$task_id"},
			{Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		TaskID string `bson:"_id"`
		N      int64  `bson:"n"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(results))
	for _, r := range results {
		out[r.TaskID] = r.N
	}
	return out, nil
}

func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
