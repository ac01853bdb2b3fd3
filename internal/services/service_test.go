package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
	"github.com/ArowuTest/jackpot-ledger/internal/repositories/memory"
	"github.com/ArowuTest/jackpot-ledger/pkg/payments/mock"
	"go.uber.org/mock/gomock"
)

const (
	admin    = "admin-wallet"
	mint     = "MINT-REFERENCE"
	stranger = "someone-else"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recordingNotifier struct {
	batches [][]*models.Event
}

func (n *recordingNotifier) Notify(_ context.Context, events []*models.Event) error {
	n.batches = append(n.batches, events)
	return nil
}

type fixture struct {
	ctx      context.Context
	svc      *LotteryServiceImpl
	store    *memory.Store
	repos    Repositories
	gateway  *mock.MockGateway
	clock    *fakeClock
	notifier *recordingNotifier
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	store := memory.NewStore()
	repos := Repositories{
		Ledgers:      memory.NewLedgerRepository(store),
		Participants: memory.NewParticipantRepository(store),
		Draws:        memory.NewDrawRepository(store),
		Events:       memory.NewEventRepository(store),
		Transactor:   store,
	}
	ctrl := gomock.NewController(t)
	f := &fixture{
		ctx:      context.Background(),
		store:    store,
		repos:    repos,
		gateway:  mock.NewMockGateway(ctrl),
		clock:    &fakeClock{t: time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)},
		notifier: &recordingNotifier{},
	}
	opts = append([]Option{WithClock(f.clock.Now), WithNotifier(f.notifier)}, opts...)
	f.svc = NewLotteryService(repos, f.gateway, opts...)
	return f
}

// newInitialized returns a fixture whose ledger exists with admin as admin.
func newInitialized(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := newFixture(t, opts...)
	if _, err := f.svc.Initialize(f.ctx, "deployer", InitializeRequest{EligibilityTokenReference: mint, AdminAuthority: admin}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return f
}

func (f *fixture) state(t *testing.T) *models.LotteryState {
	t.Helper()
	s, err := f.svc.GetLotteryState(f.ctx)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	return s
}

func (f *fixture) report(t *testing.T, wallet string, balance uint64) *models.Participant {
	t.Helper()
	p, err := f.svc.UpdateParticipant(f.ctx, wallet, ParticipantUpdate{ReportedBalance: balance})
	if err != nil {
		t.Fatalf("update participant %s: %v", wallet, err)
	}
	return p
}

func (f *fixture) contribute(t *testing.T, amount uint64) *models.ContributionSplit {
	t.Helper()
	split, err := f.svc.ContributeToJackpot(f.ctx, "contributor", ContributionRequest{Amount: amount, ExternalReference: "sig"})
	if err != nil {
		t.Fatalf("contribute %d: %v", amount, err)
	}
	return split
}

// assertInvariant checks the ledger totals against the participant records.
func (f *fixture) assertInvariant(t *testing.T) {
	t.Helper()
	all, err := f.repos.Participants.FindAll(f.ctx)
	if err != nil {
		t.Fatalf("list participants: %v", err)
	}
	var count, tickets uint64
	for _, p := range all {
		if p.IsEligible {
			count++
			tickets += p.TicketsCount
		}
	}
	s := f.state(t)
	if s.TotalParticipants != count || s.TotalTickets != tickets {
		t.Errorf("ledger totals (%d participants, %d tickets) != records (%d, %d)",
			s.TotalParticipants, s.TotalTickets, count, tickets)
	}
}

func ptr[T any](v T) *T { return &v }

func TestInitialize(t *testing.T) {
	f := newInitialized(t)

	s := f.state(t)
	if s.Admin != admin || s.EligibilityTokenReference != mint {
		t.Errorf("unexpected identities: %+v", s.Ledger)
	}
	if s.MinTicketRequirement != 1 || s.MaxTicketsPerWallet != 10_000 || s.FeePercentage != 85 || s.Version != 1 {
		t.Errorf("unexpected defaults: %+v", s.Ledger)
	}
	if s.TicketUnit != models.DefaultTicketUnit {
		t.Errorf("expected default ticket unit, got %d", s.TicketUnit)
	}
	if s.IsPaused || s.EmergencyStop || s.HourlyJackpot != 0 || s.TotalTickets != 0 {
		t.Errorf("expected zeroed counters and flags: %+v", s.Ledger)
	}
	if s.NextHourlySequence != 1 || s.NextDailySequence != 1 {
		t.Errorf("unexpected next sequences %d/%d", s.NextHourlySequence, s.NextDailySequence)
	}

	_, err := f.svc.Initialize(f.ctx, "deployer", InitializeRequest{EligibilityTokenReference: mint, AdminAuthority: admin})
	if !errors.Is(err, models.ErrInvalidProgramState) {
		t.Errorf("expected ErrInvalidProgramState on re-initialize, got %v", err)
	}

	events, _ := f.svc.RecentEvents(f.ctx, 0)
	if len(events) != 1 || events[0].Type != models.EventProgramInitialized {
		t.Errorf("expected exactly one initialization event, got %+v", events)
	}
}

func TestInitializeDefaultsAdminToCaller(t *testing.T) {
	f := newFixture(t, WithTicketUnit(500))
	s, err := f.svc.Initialize(f.ctx, "deployer", InitializeRequest{EligibilityTokenReference: mint})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if s.Admin != "deployer" || s.TicketUnit != 500 {
		t.Errorf("unexpected ledger: %+v", s.Ledger)
	}

	if _, err := newFixture(t).svc.Initialize(f.ctx, "deployer", InitializeRequest{}); !errors.Is(err, models.ErrInvalidInstructionData) {
		t.Errorf("expected ErrInvalidInstructionData without a token reference, got %v", err)
	}
}

func TestOperationsRequireLedger(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ContributeToJackpot(f.ctx, "c", ContributionRequest{Amount: 10})
	if !errors.Is(err, models.ErrInvalidProgramState) {
		t.Errorf("expected ErrInvalidProgramState before initialize, got %v", err)
	}
}

func TestUnsupportedLedgerVersion(t *testing.T) {
	f := newInitialized(t)
	l, _ := f.repos.Ledgers.Get(f.ctx)
	l.Version = 2
	if err := f.repos.Ledgers.Save(f.ctx, l); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := f.svc.GetLotteryState(f.ctx); !errors.Is(err, models.ErrInvalidAccountData) {
		t.Errorf("expected ErrInvalidAccountData, got %v", err)
	}
}

func TestUpdateConfig(t *testing.T) {
	f := newInitialized(t)

	t.Run("absent fields are left alone", func(t *testing.T) {
		s, err := f.svc.UpdateConfig(f.ctx, admin, ConfigPatch{FeePercentage: ptr(uint64(0))})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if s.FeePercentage != 0 || s.MinTicketRequirement != 1 || s.MaxTicketsPerWallet != 10_000 {
			t.Errorf("unexpected config: %+v", s.Ledger)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		cases := []ConfigPatch{
			{MinTicketRequirement: ptr(uint64(0))},
			{MinTicketRequirement: ptr(uint64(101))},
			{MaxTicketsPerWallet: ptr(uint64(0))},
			{MaxTicketsPerWallet: ptr(uint64(100_001))},
			{FeePercentage: ptr(uint64(101))},
		}
		for _, patch := range cases {
			if _, err := f.svc.UpdateConfig(f.ctx, admin, patch); !errors.Is(err, models.ErrInvalidConfig) {
				t.Errorf("patch %+v: expected ErrInvalidConfig, got %v", patch, err)
			}
		}
	})

	t.Run("admin only", func(t *testing.T) {
		if _, err := f.svc.UpdateConfig(f.ctx, stranger, ConfigPatch{FeePercentage: ptr(uint64(5))}); !errors.Is(err, models.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized, got %v", err)
		}
		if f.state(t).FeePercentage != 0 {
			t.Error("unauthorized patch was applied")
		}
	})
}

func TestUpdateConfigRederivesEligibility(t *testing.T) {
	f := newInitialized(t)
	f.report(t, "two", 2*models.DefaultTicketUnit)
	f.report(t, "five", 5*models.DefaultTicketUnit)
	f.assertInvariant(t)

	s, err := f.svc.UpdateConfig(f.ctx, admin, ConfigPatch{MinTicketRequirement: ptr(uint64(3))})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if s.TotalParticipants != 1 || s.TotalTickets != 5 {
		t.Errorf("expected only the five-ticket wallet to count, got %d/%d", s.TotalParticipants, s.TotalTickets)
	}
	p, _ := f.svc.GetParticipant(f.ctx, "two")
	if p.IsEligible {
		t.Error("two-ticket wallet should be ineligible at min 3")
	}
	f.assertInvariant(t)

	if _, err := f.svc.UpdateConfig(f.ctx, admin, ConfigPatch{MinTicketRequirement: ptr(uint64(1))}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if s := f.state(t); s.TotalParticipants != 2 || s.TotalTickets != 7 {
		t.Errorf("lowering the minimum should restore both wallets, got %d/%d", s.TotalParticipants, s.TotalTickets)
	}
	f.assertInvariant(t)
}

func TestPauseGating(t *testing.T) {
	f := newInitialized(t)
	f.contribute(t, 1_000)
	before := f.state(t)

	if _, err := f.svc.TogglePause(f.ctx, admin); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	_, err := f.svc.ContributeToJackpot(f.ctx, "c", ContributionRequest{Amount: 1_000})
	if !errors.Is(err, models.ErrProgramPaused) {
		t.Errorf("contribute: expected ErrProgramPaused, got %v", err)
	}
	_, err = f.svc.CreateLottery(f.ctx, admin, CreateDrawRequest{Cadence: models.CadenceHourly, ScheduledTime: f.clock.Now().Add(time.Hour)})
	if !errors.Is(err, models.ErrProgramPaused) {
		t.Errorf("create: expected ErrProgramPaused, got %v", err)
	}
	_, err = f.svc.UpdateParticipant(f.ctx, "w", ParticipantUpdate{ReportedBalance: 50_000})
	if !errors.Is(err, models.ErrProgramPaused) {
		t.Errorf("update participant: expected ErrProgramPaused, got %v", err)
	}

	paused := f.state(t)
	if paused.HourlyJackpot != before.HourlyJackpot || paused.HourlyDrawCount != 0 || paused.TotalParticipants != 0 {
		t.Errorf("paused operations changed state: %+v", paused.Ledger)
	}

	if _, err := f.svc.TogglePause(f.ctx, admin); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	f.contribute(t, 1_000)
	if _, err := f.svc.CreateLottery(f.ctx, admin, CreateDrawRequest{Cadence: models.CadenceHourly, ScheduledTime: f.clock.Now().Add(time.Hour)}); err != nil {
		t.Errorf("create after resume: %v", err)
	}
}

func TestEmergencyStop(t *testing.T) {
	f := newInitialized(t)

	if _, err := f.svc.EmergencyPause(f.ctx, admin, ""); !errors.Is(err, models.ErrInvalidInstructionData) {
		t.Errorf("expected ErrInvalidInstructionData for an empty reason, got %v", err)
	}
	if _, err := f.svc.EmergencyPause(f.ctx, admin, strings.Repeat("r", models.SignatureMaxLen+1)); !errors.Is(err, models.ErrSignatureTooLong) {
		t.Errorf("expected ErrSignatureTooLong, got %v", err)
	}
	if _, err := f.svc.EmergencyPause(f.ctx, stranger, "incident"); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	s, err := f.svc.EmergencyPause(f.ctx, admin, "incident 42")
	if err != nil {
		t.Fatalf("emergency pause: %v", err)
	}
	if !s.EmergencyStop || s.IsPaused {
		t.Errorf("emergency pause must only set emergencyStop: %+v", s.Ledger)
	}
	if _, err := f.svc.ContributeToJackpot(f.ctx, "c", ContributionRequest{Amount: 1}); !errors.Is(err, models.ErrEmergencyStop) {
		t.Errorf("expected ErrEmergencyStop, got %v", err)
	}

	s, err = f.svc.EmergencyResume(f.ctx, admin, "resolved")
	if err != nil {
		t.Fatalf("emergency resume: %v", err)
	}
	if s.EmergencyStop {
		t.Error("emergency stop still set after resume")
	}
	f.contribute(t, 1)

	events, _ := f.svc.RecentEvents(f.ctx, 3)
	if events[1].Type != models.EventEmergencyResume || events[1].Data["reason"] != "resolved" {
		t.Errorf("expected the resume event with its reason, got %+v", events[1])
	}
}

func TestNotifierSeesOnlyCommittedEvents(t *testing.T) {
	f := newInitialized(t)
	f.contribute(t, 100)
	if _, err := f.svc.ContributeToJackpot(f.ctx, "c", ContributionRequest{}); err == nil {
		t.Fatal("expected a zero amount to fail")
	}

	if len(f.notifier.batches) != 2 {
		t.Fatalf("expected 2 batches (initialize, contribute), got %d", len(f.notifier.batches))
	}
	if got := f.notifier.batches[1][0].Type; got != models.EventJackpotContribution {
		t.Errorf("unexpected event %s", got)
	}
	events, _ := f.svc.RecentEvents(f.ctx, 0)
	if len(events) != 2 {
		t.Errorf("rolled back operation left an event behind: %d events", len(events))
	}
}
