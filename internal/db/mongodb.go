package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/abkawan/retail-ledger/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// how long a single event write may take before it is dropped
const recordTimeout = 2 * time.Second

// for handling the MongoDB event log
type MongoDB struct {
	client     *mongo.Client
	collection *mongo.Collection
	now        func() time.Time
}

// creates a new MongoDB instance
func NewMongoDB(uri, dbName string) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Mongodb: %w", err)
	}

	// pinging the database
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping Mongodb: %w", err)
	}

	collection := client.Database(dbName).Collection("events")

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetBackground(true),
		},
		{
			Keys:    bson.D{{Key: "level", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetBackground(true),
		},
	}

	_, err = collection.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return &MongoDB{
		client:     client,
		collection: collection,
		now:        time.Now,
	}, nil
}

// closes the mongoDB connection
func (m *MongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Record appends a ledger event. Write failures are logged and dropped so
// the ledger never depends on the event log being reachable.
func (m *MongoDB) Record(level models.EventLevel, message string, err error) {
	event := &models.Event{
		Level:   level,
		Message: message,
	}
	if err != nil {
		event.Error = err.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if insertErr := m.CreateEvent(ctx, event); insertErr != nil {
		log.Printf("dropping %s event %q: %v", level, message, insertErr)
	}
}

// creates a new event
func (m *MongoDB) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = m.now()
	}

	_, err := m.collection.InsertOne(ctx, event)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	return nil
}

// retrieves events newest first, optionally filtered by level
func (m *MongoDB) GetEvents(ctx context.Context, level models.EventLevel, limit, offset int) ([]*models.Event, error) {
	options := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	filter := bson.M{}
	if level != "" {
		filter["level"] = level
	}

	cursor, err := m.collection.Find(ctx, filter, options)
	if err != nil {
		return nil, fmt.Errorf("failed to find events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}

	return events, nil
}
