package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
	"github.com/ArowuTest/jackpot-ledger/internal/repositories"
	"github.com/ArowuTest/jackpot-ledger/pkg/payments"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// LotteryService defines the ledger and draw operations. Every mutating
// operation is one transaction: on error nothing it wrote is kept.
type LotteryService interface {
	// Initialize creates the ledger. It fails once a ledger exists.
	Initialize(ctx context.Context, caller string, req InitializeRequest) (*models.LotteryState, error)
	// UpdateConfig applies the supplied fields of patch
	UpdateConfig(ctx context.Context, caller string, patch ConfigPatch) (*models.LotteryState, error)
	TogglePause(ctx context.Context, caller string) (*models.LotteryState, error)
	EmergencyPause(ctx context.Context, caller, reason string) (*models.LotteryState, error)
	EmergencyResume(ctx context.Context, caller, reason string) (*models.LotteryState, error)
	WithdrawTreasury(ctx context.Context, caller string, req WithdrawRequest) (*payments.TransferReceipt, error)
	GetLotteryState(ctx context.Context) (*models.LotteryState, error)

	// UpdateParticipant records a balance report for wallet
	UpdateParticipant(ctx context.Context, wallet string, req ParticipantUpdate) (*models.Participant, error)
	GetParticipant(ctx context.Context, wallet string) (*models.Participant, error)

	// ContributeToJackpot splits an inbound amount across pools and fee
	ContributeToJackpot(ctx context.Context, contributor string, req ContributionRequest) (*models.ContributionSplit, error)

	CreateLottery(ctx context.Context, caller string, req CreateDrawRequest) (*models.Draw, error)
	ExecuteLottery(ctx context.Context, caller string, req ExecuteDrawRequest) (*models.Draw, error)
	// ExecuteWithSelector asks selector for the winner and seed, then executes
	ExecuteWithSelector(ctx context.Context, caller string, cadence models.Cadence, sequence uint32, selector WinnerSelector) (*models.Draw, error)
	PayWinner(ctx context.Context, payee string, cadence models.Cadence, sequence uint32) (*models.Draw, error)
	CancelLottery(ctx context.Context, caller string, cadence models.Cadence, sequence uint32, reason string) (*models.Draw, error)
	GetDraw(ctx context.Context, cadence models.Cadence, sequence uint32) (*models.Draw, error)
	ListDraws(ctx context.Context, status models.DrawStatus) ([]*models.Draw, error)
	RecentEvents(ctx context.Context, limit int) ([]*models.Event, error)

	Leaderboard(ctx context.Context, limit int) ([]*models.Participant, error)
	HallOfFame(ctx context.Context, limit int) ([]*models.Draw, error)
	// DrawsWonBy lists the draws in status whose winner is wallet
	DrawsWonBy(ctx context.Context, status models.DrawStatus, wallet string) ([]*models.Draw, error)
	ParticipantStats(ctx context.Context) (*ParticipantStats, error)
}

// WinnerSelector picks the winner of a draw from its snapshot. The seed it
// returns is recorded for audit and must be non-zero.
type WinnerSelector interface {
	Select(ctx context.Context, draw models.Draw) (winner string, seed uint64, err error)
}

// EventNotifier receives events after the transaction that produced them
// has committed. Delivery failures are logged and never undo the operation.
type EventNotifier interface {
	Notify(ctx context.Context, events []*models.Event) error
}

// Repositories groups the stores the service writes through.
type Repositories struct {
	Ledgers      repositories.LedgerRepository
	Participants repositories.ParticipantRepository
	Draws        repositories.DrawRepository
	Events       repositories.EventRepository
	Transactor   repositories.Transactor
}

// Compile-time check to ensure LotteryServiceImpl implements LotteryService
var _ LotteryService = (*LotteryServiceImpl)(nil)

// LotteryServiceImpl implements LotteryService on top of the repositories.
type LotteryServiceImpl struct {
	ledgerRepo      repositories.LedgerRepository
	participantRepo repositories.ParticipantRepository
	drawRepo        repositories.DrawRepository
	eventRepo       repositories.EventRepository
	tx              repositories.Transactor
	payments        payments.Gateway
	notifier        EventNotifier

	now        func() time.Time
	ticketUnit uint64

	// mu serializes operations within this process; the transactor keeps
	// them atomic against the store.
	mu sync.Mutex
}

// Option configures a LotteryServiceImpl
type Option func(*LotteryServiceImpl)

// WithClock replaces the time source
func WithClock(now func() time.Time) Option {
	return func(s *LotteryServiceImpl) { s.now = now }
}

// WithTicketUnit sets the balance units per ticket stored on a new ledger.
// It has no effect once the ledger exists.
func WithTicketUnit(unit uint64) Option {
	return func(s *LotteryServiceImpl) {
		if unit > 0 {
			s.ticketUnit = unit
		}
	}
}

// WithNotifier sets the post-commit event receiver
func WithNotifier(n EventNotifier) Option {
	return func(s *LotteryServiceImpl) { s.notifier = n }
}

// NewLotteryService creates a new LotteryServiceImpl
func NewLotteryService(repos Repositories, gateway payments.Gateway, opts ...Option) *LotteryServiceImpl {
	s := &LotteryServiceImpl{
		ledgerRepo:      repos.Ledgers,
		participantRepo: repos.Participants,
		drawRepo:        repos.Draws,
		eventRepo:       repos.Events,
		tx:              repos.Transactor,
		payments:        gateway,
		now:             func() time.Time { return time.Now().UTC() },
		ticketUnit:      models.DefaultTicketUnit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// txScope collects the events emitted while a transaction runs.
type txScope struct {
	svc    *LotteryServiceImpl
	now    time.Time
	events []*models.Event
}

// emit appends an event to the audit log inside the transaction.
func (t *txScope) emit(ctx context.Context, typ models.EventType, actor string, data map[string]interface{}) error {
	ev := &models.Event{
		ID:        uuid.NewString(),
		Type:      typ,
		Actor:     actor,
		Data:      data,
		Timestamp: t.now,
	}
	if err := t.svc.eventRepo.Append(ctx, ev); err != nil {
		return fmt.Errorf("failed to append %s event: %w", typ, err)
	}
	t.events = append(t.events, ev)
	return nil
}

// transact runs fn as one serialized transaction and notifies the events it
// emitted once it has committed.
func (s *LotteryServiceImpl) transact(ctx context.Context, op string, fn func(ctx context.Context, scope *txScope) error) error {
	s.mu.Lock()
	scope := &txScope{svc: s, now: s.now()}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		scope.events = scope.events[:0]
		return fn(ctx, scope)
	})
	s.mu.Unlock()

	if err != nil {
		var lerr *models.LotteryError
		if errors.As(err, &lerr) {
			slog.Warn("Operation rejected", "op", op, "code", lerr.Code, "reason", lerr.Name)
		} else {
			slog.Error("Operation failed", "op", op, "error", err)
		}
		return err
	}

	if s.notifier != nil && len(scope.events) > 0 {
		if nerr := s.notifier.Notify(ctx, scope.events); nerr != nil {
			slog.Error("Failed to deliver events", "op", op, "count", len(scope.events), "error", nerr)
		}
	}
	return nil
}

// loadLedger reads the ledger and checks its schema version.
func (s *LotteryServiceImpl) loadLedger(ctx context.Context) (*models.Ledger, error) {
	ledger, err := s.ledgerRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ledger is not initialized", models.ErrInvalidProgramState)
		}
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	if ledger.Version != models.LedgerSchemaVersion {
		return nil, fmt.Errorf("%w: ledger version %d, supported %d", models.ErrInvalidAccountData, ledger.Version, models.LedgerSchemaVersion)
	}
	return ledger, nil
}

func (s *LotteryServiceImpl) saveLedger(ctx context.Context, ledger *models.Ledger, now time.Time) error {
	ledger.LastUpdated = now
	if err := s.ledgerRepo.Save(ctx, ledger); err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	return nil
}

// GetLotteryState returns a projection of the ledger
func (s *LotteryServiceImpl) GetLotteryState(ctx context.Context) (*models.LotteryState, error) {
	ledger, err := s.loadLedger(ctx)
	if err != nil {
		return nil, err
	}
	return models.NewLotteryState(ledger), nil
}

// RecentEvents returns the newest audit events first
func (s *LotteryServiceImpl) RecentEvents(ctx context.Context, limit int) ([]*models.Event, error) {
	events, err := s.eventRepo.FindRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}
