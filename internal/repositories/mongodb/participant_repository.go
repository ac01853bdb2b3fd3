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

// ParticipantRepository implements the repositories.ParticipantRepository interface
type ParticipantRepository struct {
	collection *mongo.Collection
}

// NewParticipantRepository creates a new ParticipantRepository
func NewParticipantRepository(db *mongo.Database) repositories.ParticipantRepository {
	return &ParticipantRepository{
		collection: db.Collection("participants"),
	}
}

// FindByWallet finds a participant by wallet
func (r *ParticipantRepository) FindByWallet(ctx context.Context, wallet string) (*models.Participant, error) {
	var participant models.Participant
	if err := r.collection.FindOne(ctx, bson.M{"_id": wallet}).Decode(&participant); err != nil {
		return nil, translate(err)
	}
	return &participant, nil
}

// Save upserts the participant keyed by wallet
func (r *ParticipantRepository) Save(ctx context.Context, participant *models.Participant) error {
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": participant.Wallet},
		participant,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save participant %s: %w", participant.Wallet, err)
	}
	return nil
}

// FindEligible returns every eligible participant ordered by wallet
func (r *ParticipantRepository) FindEligible(ctx context.Context) ([]*models.Participant, error) {
	return r.find(ctx, bson.M{"isEligible": true})
}

// FindAll returns every participant ordered by wallet
func (r *ParticipantRepository) FindAll(ctx context.Context) ([]*models.Participant, error) {
	return r.find(ctx, bson.M{})
}

func (r *ParticipantRepository) find(ctx context.Context, filter bson.M) ([]*models.Participant, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var participants []*models.Participant
	if err := cursor.All(ctx, &participants); err != nil {
		return nil, err
	}
	if participants == nil {
		participants = []*models.Participant{}
	}
	return participants, nil
}
