package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
	"github.com/ArowuTest/jackpot-ledger/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// LedgerRepository implements the repositories.LedgerRepository interface
type LedgerRepository struct {
	collection *mongo.Collection
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(db *mongo.Database) repositories.LedgerRepository {
	return &LedgerRepository{
		collection: db.Collection("lottery_state"),
	}
}

// Get loads the singleton ledger document
func (r *LedgerRepository) Get(ctx context.Context) (*models.Ledger, error) {
	var ledger models.Ledger
	err := r.collection.FindOne(ctx, bson.M{"_id": models.LedgerID}).Decode(&ledger)
	if err != nil {
		return nil, translate(err)
	}
	return &ledger, nil
}

// Create inserts the ledger; a second insert fails with ErrDuplicate
func (r *LedgerRepository) Create(ctx context.Context, ledger *models.Ledger) error {
	doc := *ledger
	doc.ID = models.LedgerID
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return translate(err)
	}
	return nil
}

// Save replaces the stored ledger
func (r *LedgerRepository) Save(ctx context.Context, ledger *models.Ledger) error {
	doc := *ledger
	doc.ID = models.LedgerID
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": models.LedgerID}, doc)
	if err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// translate maps driver errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return repositories.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", repositories.ErrDuplicate, err)
	default:
		return err
	}
}
