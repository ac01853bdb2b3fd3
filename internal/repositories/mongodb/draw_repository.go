package mongodb

import (
	"context"
	"fmt"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
	"github.com/ArowuTest/jackpot-ledger/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DrawRepository implements the repositories.DrawRepository interface
type DrawRepository struct {
	collection *mongo.Collection
}

// NewDrawRepository creates a new DrawRepository
func NewDrawRepository(db *mongo.Database) repositories.DrawRepository {
	return &DrawRepository{
		collection: db.Collection("draws"),
	}
}

// Create inserts a draw keyed by cadence and sequence
func (r *DrawRepository) Create(ctx context.Context, draw *models.Draw) error {
	doc := *draw
	doc.ID = models.DrawKey(draw.Cadence, draw.SequenceID)
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return translate(err)
	}
	return nil
}

// Find finds a draw by cadence and sequence
func (r *DrawRepository) Find(ctx context.Context, cadence models.Cadence, sequence uint32) (*models.Draw, error) {
	var draw models.Draw
	err := r.collection.FindOne(ctx, bson.M{"_id": models.DrawKey(cadence, sequence)}).Decode(&draw)
	if err != nil {
		return nil, translate(err)
	}
	return &draw, nil
}

// Update replaces an existing draw
func (r *DrawRepository) Update(ctx context.Context, draw *models.Draw) error {
	doc := *draw
	doc.ID = models.DrawKey(draw.Cadence, draw.SequenceID)
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return fmt.Errorf("failed to update draw %s: %w", doc.ID, err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// FindByStatus finds draws in a status, earliest scheduled first
func (r *DrawRepository) FindByStatus(ctx context.Context, status models.DrawStatus) ([]*models.Draw, error) {
	opts := options.Find().SetSort(bson.D{{Key: "scheduledTime", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var draws []*models.Draw
	if err := cursor.All(ctx, &draws); err != nil {
		return nil, err
	}
	if draws == nil {
		draws = []*models.Draw{}
	}
	return draws, nil
}
