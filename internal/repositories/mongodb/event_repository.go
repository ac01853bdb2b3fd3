package mongodb

import (
	"context"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
	"github.com/ArowuTest/jackpot-ledger/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EventRepository struct {
	collection *mongo.Collection
}

func NewEventRepository(db *mongo.Database) repositories.EventRepository {
	return &EventRepository{
		collection: db.Collection("events"),
	}
}

func (r *EventRepository) Append(ctx context.Context, event *models.Event) error {
	_, err := r.collection.InsertOne(ctx, event)
	return translate(err)
}

func (r *EventRepository) FindRecent(ctx context.Context, limit int) ([]*models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}

	// Ensure an empty slice is returned instead of nil
	if events == nil {
		events = []*models.Event{}
	}
	return events, nil
}
