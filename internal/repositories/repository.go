package repositories

import (
	"context"
	"errors"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a create collides with an existing key.
	ErrDuplicate = errors.New("duplicate record")
)

// LedgerRepository stores the singleton ledger.
type LedgerRepository interface {
	Get(ctx context.Context) (*models.Ledger, error)
	Create(ctx context.Context, ledger *models.Ledger) error
	Save(ctx context.Context, ledger *models.Ledger) error
}

// ParticipantRepository stores participants keyed by wallet. There is no
// delete; a participant with a zero balance stays in the store.
type ParticipantRepository interface {
	FindByWallet(ctx context.Context, wallet string) (*models.Participant, error)
	Save(ctx context.Context, participant *models.Participant) error
	FindEligible(ctx context.Context) ([]*models.Participant, error)
	FindAll(ctx context.Context) ([]*models.Participant, error)
}

// DrawRepository stores draws keyed by (cadence, sequence).
type DrawRepository interface {
	Create(ctx context.Context, draw *models.Draw) error
	Find(ctx context.Context, cadence models.Cadence, sequence uint32) (*models.Draw, error)
	Update(ctx context.Context, draw *models.Draw) error
	FindByStatus(ctx context.Context, status models.DrawStatus) ([]*models.Draw, error)
}

// EventRepository is the append-only audit log.
type EventRepository interface {
	Append(ctx context.Context, event *models.Event) error
	FindRecent(ctx context.Context, limit int) ([]*models.Event, error)
}

// Transactor runs fn so that either every repository write made through the
// ctx passed to fn is committed, or none is.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
